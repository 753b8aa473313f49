// Package forms carries the input-form semantics of the logging UI: raw
// string fields are parsed, validated and normalized before any store call,
// and submission outcomes follow the idle/submitting/outcome state machine.
package forms

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for the performed-at field. The first matches the value
// of an HTML datetime-local input.
var timestampLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// parseTimestamp parses the performed-at field. It accepts datetime-local
// style values and epoch milliseconds.
func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}

	if millis, err := strconv.ParseInt(value, 10, 64); err == nil && millis > 0 {
		return time.UnixMilli(millis).UTC(), true
	}
	return time.Time{}, false
}

// parseFloatField parses an optional numeric field. Blank, unparseable or
// non-finite input becomes unset, never zero.
func parseFloatField(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
		return nil
	}
	return &parsed
}

// parseIntField parses an optional integer field with the same
// unset-on-failure rule as parseFloatField. Fractional input truncates
// toward zero, so "5.7" reps count as 5.
func parseIntField(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if parsed, err := strconv.Atoi(value); err == nil {
		return &parsed
	}
	parsed := parseFloatField(value)
	if parsed == nil {
		return nil
	}
	truncated := int(*parsed)
	return &truncated
}

func optionalText(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
