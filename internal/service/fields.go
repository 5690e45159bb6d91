package service

// Helpers for reading values out of coerced payloads. After validate.Apply
// has run, values for declared fields are already their coerced Go types;
// these helpers just unwrap with safe zero-value fallbacks.

func getString(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

func getBool(payload map[string]any, key string) bool {
	b, _ := payload[key].(bool)
	return b
}

// getStringSlice unwraps an array-valued field. Arrays arrive from JSON as
// []any; a missing field yields an empty (non-nil) slice so callers can
// range without nil checks.
func getStringSlice(payload map[string]any, key string) []string {
	out := []string{}
	arr, ok := payload[key].([]any)
	if !ok {
		return out
	}
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
