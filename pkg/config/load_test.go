package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_MergesOntoDefaults(t *testing.T) {
	path := writeTempConfig(t, `
credit_per_dollar: 500
models:
  openai:gpt-4:
    prompt_cost_per_1k: 0.04
    features:
      summarize:
        margin: 1.25
  local:phi-3:
    prompt_cost_per_1k: 0.0001
    completion_cost_per_1k: 0.0002
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.CreditPerDollar != 500 {
		t.Errorf("CreditPerDollar = %v, want 500", cfg.CreditPerDollar)
	}
	if cfg.DefaultMargin != DefaultMargin {
		t.Errorf("DefaultMargin = %v, want default %v", cfg.DefaultMargin, DefaultMargin)
	}

	gpt4 := cfg.Models["openai:gpt-4"]
	if gpt4.PromptCostPer1K != 0.04 {
		t.Errorf("PromptCostPer1K = %v, want 0.04", gpt4.PromptCostPer1K)
	}
	if gpt4.CompletionCostPer1K != 0.06 {
		t.Errorf("CompletionCostPer1K = %v, want default 0.06", gpt4.CompletionCostPer1K)
	}
	if gpt4.Features["chat"].Margin != 2.0 {
		t.Errorf("chat margin = %v, want retained 2.0", gpt4.Features["chat"].Margin)
	}
	if gpt4.Features["summarize"].Margin != 1.25 {
		t.Errorf("summarize margin = %v, want 1.25", gpt4.Features["summarize"].Margin)
	}

	if _, ok := cfg.Models["local:phi-3"]; !ok {
		t.Error("new model local:phi-3 not present")
	}
	if _, ok := cfg.Models["anthropic:claude-3-opus"]; !ok {
		t.Error("default model anthropic:claude-3-opus not retained")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "models: [\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadConfig_EnvOverridesWin(t *testing.T) {
	path := writeTempConfig(t, "credit_per_dollar: 500\n")
	t.Setenv("ABACUS_CREDIT_PER_DOLLAR", "250")
	t.Setenv("ABACUS_DEFAULT_MARGIN", "1.5")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.CreditPerDollar != 250 {
		t.Errorf("CreditPerDollar = %v, want env override 250", cfg.CreditPerDollar)
	}
	if cfg.DefaultMargin != 1.5 {
		t.Errorf("DefaultMargin = %v, want env override 1.5", cfg.DefaultMargin)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Configuration) {},
		},
		{
			name:   "zero default margin is legal",
			mutate: func(c *Configuration) { c.DefaultMargin = 0 },
		},
		{
			name:    "negative default margin",
			mutate:  func(c *Configuration) { c.DefaultMargin = -1 },
			wantErr: true,
		},
		{
			name: "negative prompt cost",
			mutate: func(c *Configuration) {
				mp := c.Models["openai:gpt-4"]
				mp.PromptCostPer1K = -0.01
				c.Models["openai:gpt-4"] = mp
			},
			wantErr: true,
		},
		{
			name: "negative feature margin",
			mutate: func(c *Configuration) {
				c.Models["openai:gpt-4"].Features["chat"] = FeaturePricing{Margin: -2}
			},
			wantErr: true,
		},
		{
			name:   "zero credit per dollar is not rejected",
			mutate: func(c *Configuration) { c.CreditPerDollar = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
