package extractors

import (
	"encoding/json"
	"fmt"

	"tallyhq/abacus/pkg/meter"
)

// normalize re-encodes an arbitrary response value through JSON so one
// extractor handles provider SDK structs, decoded maps and raw []byte
// alike.
func normalize(provider string, response any, out any) error {
	var raw []byte
	switch v := response.(type) {
	case nil:
		return &ExtractionError{Provider: provider, Message: "response is nil"}
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	case string:
		raw = []byte(v)
	default:
		var err error
		raw, err = json.Marshal(response)
		if err != nil {
			return &ExtractionError{Provider: provider, Message: "response is not serializable", Cause: err}
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &ExtractionError{Provider: provider, Message: "response has unexpected shape", Cause: err}
	}
	return nil
}

// openAIExtractor reads the usage block of an OpenAI-style completion
// response: {"usage": {"prompt_tokens": N, "completion_tokens": M}}.
type openAIExtractor struct{}

// OpenAI returns an extractor for OpenAI-style responses.
func OpenAI() meter.Extractor {
	return openAIExtractor{}
}

func (openAIExtractor) Info() meter.ExtractorInfo {
	return meter.ExtractorInfo{
		ProviderName: "openai",
		Description:  "reads usage.prompt_tokens and usage.completion_tokens",
		APIVersion:   "v1",
	}
}

func (openAIExtractor) Extract(response any) (meter.Usage, error) {
	var parsed struct {
		Usage *struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := normalize("openai", response, &parsed); err != nil {
		return meter.Usage{}, err
	}
	if parsed.Usage == nil {
		return meter.Usage{}, &ExtractionError{
			Provider: "openai",
			Message:  "response is missing the usage block",
		}
	}
	return meter.Usage{
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
	}, nil
}

// anthropicExtractor reads the usage block of an Anthropic-style messages
// response: {"usage": {"input_tokens": N, "output_tokens": M}}.
type anthropicExtractor struct{}

// Anthropic returns an extractor for Anthropic-style responses.
func Anthropic() meter.Extractor {
	return anthropicExtractor{}
}

func (anthropicExtractor) Info() meter.ExtractorInfo {
	return meter.ExtractorInfo{
		ProviderName: "anthropic",
		Description:  "reads usage.input_tokens and usage.output_tokens",
		APIVersion:   "2023-06-01",
	}
}

func (anthropicExtractor) Extract(response any) (meter.Usage, error) {
	var parsed struct {
		Usage *struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := normalize("anthropic", response, &parsed); err != nil {
		return meter.Usage{}, err
	}
	if parsed.Usage == nil {
		return meter.Usage{}, &ExtractionError{
			Provider: "anthropic",
			Message:  "response is missing the usage block",
		}
	}
	return meter.Usage{
		PromptTokens:     parsed.Usage.InputTokens,
		CompletionTokens: parsed.Usage.OutputTokens,
	}, nil
}

// ExtractionError reports a response whose shape did not carry the usage
// data the extractor expects. It propagates unchanged to the WrapCall
// caller.
type ExtractionError struct {
	// Provider is the extractor's provider name.
	Provider string

	// Message describes what was missing or malformed.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s extractor: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s extractor: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
