package postgres

import (
	"encoding/json"

	"github.com/fixscout/fixscout/storage"
)

// jsonOrEmptyArray substitutes an empty JSON array for missing content so
// the JSONB column stays queryable.
func jsonOrEmptyArray(s string) string {
	if s == "" {
		return "[]"
	}
	return s
}

// jsonOrNull substitutes SQL-friendly null JSON for missing content.
func jsonOrNull(s string) string {
	if s == "" {
		return "null"
	}
	return s
}

// usageToJSON converts token usage to a JSON string for storage.
func usageToJSON(usage *storage.TokenUsage) string {
	if usage == nil {
		return "null"
	}
	b, _ := json.Marshal(usage)
	return string(b)
}

// usageFromJSON parses a JSON string into token usage.
func usageFromJSON(s string) *storage.TokenUsage {
	if s == "" || s == "null" {
		return nil
	}
	var usage storage.TokenUsage
	if err := json.Unmarshal([]byte(s), &usage); err != nil {
		return nil
	}
	return &usage
}
