package llm

import "testing"

func TestNewOpenAIProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("Expected error when API key is missing")
	}
}

func TestNewOpenAIProvider_Name(t *testing.T) {
	p, err := NewOpenAIProvider(Config{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewOpenAIProvider failed: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name = %q, want openai", p.Name())
	}
}

func TestNewProvider_Factory(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantNil  bool
		wantErr  bool
		provider string
	}{
		{"disabled", Config{Provider: ""}, true, false, ""},
		{"openai", Config{Provider: "openai", APIKey: "sk-test"}, false, false, "openai"},
		{"openai case folded", Config{Provider: "OpenAI", APIKey: "sk-test"}, false, false, "openai"},
		{"ollama", Config{Provider: "ollama"}, false, false, "ollama"},
		{"unknown", Config{Provider: "gemini"}, true, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantNil != (p == nil) {
				t.Fatalf("provider = %v, wantNil %v", p, tt.wantNil)
			}
			if p != nil && p.Name() != tt.provider {
				t.Errorf("Name = %q, want %q", p.Name(), tt.provider)
			}
		})
	}
}
