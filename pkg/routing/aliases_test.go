package routing

import "testing"

func TestAliasTableResolve(t *testing.T) {
	table := NewAliasTable(map[string]map[string]string{
		"llama-70b": {
			"groq":     "llama-3.3-70b-versatile",
			"together": "meta-llama/Llama-3.3-70B-Instruct-Turbo",
		},
	})

	tests := []struct {
		name     string
		model    string
		provider string
		want     string
	}{
		{"mapped provider", "llama-70b", "groq", "llama-3.3-70b-versatile"},
		{"other mapped provider", "llama-70b", "together", "meta-llama/Llama-3.3-70B-Instruct-Turbo"},
		{"alias without entry for provider", "llama-70b", "cerebras", "llama-70b"},
		{"unknown model passes through", "gpt-oss-120b", "groq", "gpt-oss-120b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Resolve(tt.model, tt.provider); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.model, tt.provider, got, tt.want)
			}
		})
	}
}

func TestAliasTableNilConfig(t *testing.T) {
	table := NewAliasTable(nil)

	if got := table.Resolve("anything", "groq"); got != "anything" {
		t.Errorf("empty table should resolve to identity, got %q", got)
	}
	if got := table.Friendly(); len(got) != 0 {
		t.Errorf("empty table should list no friendly names, got %v", got)
	}
}
