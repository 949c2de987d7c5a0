package pricing

import (
	"errors"
	"math"
	"strings"
	"testing"

	"tallyhq/abacus/pkg/config"
)

func testConfig() config.Configuration {
	return config.Configuration{
		DefaultMargin:   1.0,
		CreditPerDollar: 1000,
		Models: map[string]config.ModelPricing{
			"openai:gpt-4": {
				PromptCostPer1K:     0.03,
				CompletionCostPer1K: 0.06,
				Features: map[string]config.FeaturePricing{
					"chat": {Margin: 2.0},
					"free": {Margin: 0},
				},
			},
			"anthropic:claude-3-haiku": {
				PromptCostPer1K:     0.00025,
				CompletionCostPer1K: 0.00125,
			},
		},
	}
}

func TestEstimate_KnownScenario(t *testing.T) {
	// ((150/1000)*0.03 + (350/1000)*0.06) * 2.0 * 1000 = 51
	got, err := Estimate(testConfig(), "openai:gpt-4", "chat", 150, 350)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if got != 51 {
		t.Errorf("Estimate = %v, want 51", got)
	}
}

func TestEstimate_Table(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name              string
		model, feature    string
		prompt, completion int
		want              float64
	}{
		{
			name:  "zero tokens yield zero credits",
			model: "openai:gpt-4", feature: "chat",
			prompt: 0, completion: 0,
			want: 0,
		},
		{
			name:  "unconfigured feature falls back to default margin",
			model: "openai:gpt-4", feature: "translate",
			prompt: 1000, completion: 0,
			want: 30, // 0.03 * 1.0 * 1000
		},
		{
			name:  "explicit zero margin is a free feature",
			model: "openai:gpt-4", feature: "free",
			prompt: 1000, completion: 1000,
			want: 0,
		},
		{
			name:  "model without features uses default margin",
			model: "anthropic:claude-3-haiku", feature: "chat",
			prompt: 4000, completion: 2000,
			want: 3.5, // (0.001 + 0.0025) * 1000
		},
		{
			name:  "negative token counts treated as zero",
			model: "openai:gpt-4", feature: "chat",
			prompt: -10, completion: 500,
			want: 60, // (500/1000)*0.06 * 2 * 1000
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Estimate(cfg, tt.model, tt.feature, tt.prompt, tt.completion)
			if err != nil {
				t.Fatalf("Estimate failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Estimate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimate_UnknownModel(t *testing.T) {
	_, err := Estimate(testConfig(), "openai:gpt-99", "chat", 10, 10)
	if err == nil {
		t.Fatal("expected UnknownModelError")
	}

	var ume *UnknownModelError
	if !errors.As(err, &ume) {
		t.Fatalf("error type = %T, want *UnknownModelError", err)
	}
	if ume.Model != "openai:gpt-99" {
		t.Errorf("Model = %q, want openai:gpt-99", ume.Model)
	}

	// The message must enumerate the configured model identifiers.
	for _, name := range []string{"openai:gpt-4", "anthropic:claude-3-haiku"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error message %q does not list %q", err.Error(), name)
		}
	}
}

func TestEstimate_PureAndFinite(t *testing.T) {
	cfg := testConfig()

	first, err := Estimate(cfg, "openai:gpt-4", "chat", 123, 456)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	second, err := Estimate(cfg, "openai:gpt-4", "chat", 123, 456)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if first != second {
		t.Errorf("Estimate not idempotent: %v != %v", first, second)
	}
	if first < 0 || math.IsNaN(first) || math.IsInf(first, 0) {
		t.Errorf("Estimate = %v, want non-negative finite", first)
	}
}

func TestRound6(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.00000051, 0.000001},
		{-0.00000051, -0.000001},
		{0.00000049, 0},
		{1.23456749, 1.234567},
		{1.23456755, 1.234568},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round6(tt.in); got != tt.want {
			t.Errorf("Round6(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
