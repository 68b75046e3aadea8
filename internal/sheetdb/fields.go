package sheetdb

import "time"

// Field readers tolerate the loose typing of the spreadsheet API: numbers
// arrive as float64, checkboxes as bool or missing, timestamps as RFC 3339
// strings.

func fieldString(f map[string]any, key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

func fieldBool(f map[string]any, key string) bool {
	if v, ok := f[key].(bool); ok {
		return v
	}
	return false
}

func fieldInt(f map[string]any, key string) *int {
	if v, ok := f[key].(float64); ok {
		n := int(v)
		return &n
	}
	return nil
}

func fieldTime(f map[string]any, key string) *time.Time {
	s, ok := f[key].(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
