// Abacus meters generative-model usage in credits: it estimates the
// credit cost of a call before it happens and reconciles the estimate
// against actual token usage afterwards.
//
// Usage:
//
//	# Estimate the credit cost of a call
//	abacus estimate --model openai:gpt-4 --feature chat --prompt-tokens 150 --completion-tokens 350
//
//	# List configured models and their features
//	abacus models
//
//	# Show version information
//	abacus version
package main

func main() {
	Execute()
}
