package meter

// Usage holds the actual token counts read out of a provider response.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// ExtractorInfo identifies a token extractor.
type ExtractorInfo struct {
	// ProviderName names the provider whose response shape the extractor
	// understands (e.g. "openai").
	ProviderName string

	// Description optionally describes the extractor.
	Description string

	// APIVersion optionally names the provider API version the extractor
	// was written against.
	APIVersion string
}

// Extractor reads actual token usage out of a provider-specific response
// shape. Implementations must return a descriptive error when the response
// is missing the usage data they expect; the engine does not validate
// response shapes itself.
type Extractor interface {
	// Info identifies the extractor.
	Info() ExtractorInfo

	// Extract returns the actual prompt and completion token counts from
	// a provider response.
	Extract(response any) (Usage, error)
}
