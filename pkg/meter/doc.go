// Package meter is the entry point of the credit metering engine. An
// Engine estimates the credit cost of generative-model calls before they
// happen, reconciles estimates against actual token usage afterwards, and
// keeps its pricing configuration in sync with a billing dashboard.
//
// Typical use:
//
//	engine := meter.New(meter.EngineConfig{})
//	defer engine.Close()
//
//	result, err := engine.WrapCall(ctx, meter.CallRequest{
//		Model:            "openai:gpt-4",
//		Feature:          "chat",
//		PromptTokens:     150,
//		CompletionTokens: 350,
//		Invoke: func(ctx context.Context) (any, error) {
//			return client.CreateCompletion(ctx, prompt)
//		},
//		Extractor: extractors.OpenAI(),
//	})
//
// The engine is fully functional offline: dashboard sync is opt-in via
// EnableDashboardSync, and every dashboard failure is absorbed internally.
// Only pricing errors (unknown model) and the caller's own invocation or
// extraction errors ever surface from WrapCall.
package meter
