package content

import (
	"strconv"
	"strings"
	"time"
)

// Best-effort accessors over decoded upstream JSON. The web API omits
// fields freely and is inconsistent about number vs. string ids, so
// every field access defaults instead of failing. Only the top-level
// object check (see normalizer.go) is a hard error.

func asObject(input any) (map[string]any, bool) {
	obj, ok := input.(map[string]any)
	return obj, ok
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func stringFieldPtr(obj map[string]any, key string) *string {
	if _, ok := obj[key]; !ok {
		return nil
	}
	if obj[key] == nil {
		return nil
	}
	s := stringField(obj, key)
	return &s
}

// idField coerces upstream numeric ids to string ids.
func idField(obj map[string]any, key string) string {
	return stringField(obj, key)
}

func numberField(obj map[string]any, key string) (float64, bool) {
	switch v := obj[key].(type) {
	case float64:
		return v, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func intField(obj map[string]any, key string) int {
	f, ok := numberField(obj, key)
	if !ok {
		return 0
	}
	return int(f)
}

func boolField(obj map[string]any, key string) bool {
	v, _ := obj[key].(bool)
	return v
}

func arrayField(obj map[string]any, key string) []any {
	v, _ := obj[key].([]any)
	return v
}

func objectField(obj map[string]any, key string) map[string]any {
	v, _ := obj[key].(map[string]any)
	return v
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func timeField(obj map[string]any, key string) time.Time {
	t, _ := parseTime(stringField(obj, key))
	return t
}

func timeFieldPtr(obj map[string]any, key string) *time.Time {
	t, ok := parseTime(stringField(obj, key))
	if !ok {
		return nil
	}
	return &t
}

// combineKickoff joins the separately delivered game date and time into
// a single timestamp. The date field sometimes arrives with a midnight
// time component already attached; only its date part is used.
func combineKickoff(gameDate, gameTime string) time.Time {
	datePart := strings.TrimSpace(gameDate)
	if i := strings.Index(datePart, "T"); i >= 0 {
		datePart = datePart[:i]
	}
	if gameTime != "" {
		if t, ok := parseTime(datePart + "T" + gameTime); ok {
			return t
		}
	}
	t, _ := parseTime(datePart)
	return t
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
