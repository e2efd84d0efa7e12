package routing

// AliasTable maps friendly model names to provider-native model identifiers.
// It is a two-level table: friendly model -> provider name -> native model.
// Built once from configuration and read-only afterwards.
type AliasTable struct {
	table map[string]map[string]string
}

// NewAliasTable builds an alias table from the routing.model_aliases config
// mapping. A nil mapping yields an empty table that resolves every model to
// itself.
func NewAliasTable(aliases map[string]map[string]string) *AliasTable {
	table := make(map[string]map[string]string, len(aliases))
	for friendly, byProvider := range aliases {
		entry := make(map[string]string, len(byProvider))
		for provider, native := range byProvider {
			entry[provider] = native
		}
		table[friendly] = entry
	}
	return &AliasTable{table: table}
}

// Resolve returns the provider-native model for a friendly model name.
// Resolution is total: an unknown friendly name, or a known alias with no
// entry for this provider, passes through unchanged so providers accept
// their own native names directly.
func (t *AliasTable) Resolve(model, provider string) string {
	if byProvider, ok := t.table[model]; ok {
		if native, ok := byProvider[provider]; ok {
			return native
		}
	}
	return model
}

// Friendly returns all friendly model names with at least one alias entry.
func (t *AliasTable) Friendly() []string {
	names := make([]string, 0, len(t.table))
	for friendly := range t.table {
		names = append(names, friendly)
	}
	return names
}
