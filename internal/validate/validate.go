// Package validate implements the declarative field-validation engine.
// Entity kinds declare an ordered []Field; Apply runs every rule of every
// field in declaration order and accumulates all failures — validation never
// short-circuits on the first error.
//
// Rules coerce as they check ("true" → true, "7" → 7); Apply returns the
// payload with those coercions applied so handlers can echo exactly what the
// client will want to re-render.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dkeeling/lifelog/internal/domain"
)

// Rule checks (and possibly coerces) one field value. present is false when
// the field was absent from the payload or carried JSON null. Rules return
// the value — coerced or untouched — plus at most one FieldError.
type Rule func(param string, value any, present bool) (any, *domain.FieldError)

// Field binds a payload key to its ordered rule list.
type Field struct {
	Param string
	Rules []Rule
}

// Apply runs every field's rules against the payload, in declaration order,
// and returns all accumulated errors plus the coerced payload echo.
// Keys in the payload that no field declares pass through untouched.
func Apply(fields []Field, payload map[string]any) ([]domain.FieldError, map[string]any) {
	normalized := make(map[string]any, len(payload))
	for k, v := range payload {
		normalized[k] = v
	}

	var errs []domain.FieldError
	for _, f := range fields {
		v, ok := payload[f.Param]
		present := ok && v != nil
		for _, rule := range f.Rules {
			coerced, fe := rule(f.Param, v, present)
			v = coerced
			if fe != nil {
				errs = append(errs, *fe)
			}
		}
		if present {
			normalized[f.Param] = v
		}
	}
	return errs, normalized
}

// Required rejects absent fields and present-but-blank strings.
func Required(msg string) Rule {
	return func(param string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			fe := domain.NewMissingFieldError(param, msg)
			return v, &fe
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			fe := domain.NewFieldError(param, msg, s)
			return v, &fe
		}
		return v, nil
	}
}

// String enforces that a present value is a string. Optional free-text
// fields declare it so a non-string value is rejected instead of being
// silently dropped on the way into the persisted record.
func String(msg string) Rule {
	return func(param string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			return v, nil
		}
		if _, ok := v.(string); !ok {
			fe := domain.NewFieldError(param, msg, v)
			return v, &fe
		}
		return v, nil
	}
}

// StrLen enforces that a present value is a string of min..max runes.
func StrLen(min, max int, msg string) Rule {
	return func(param string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			return v, nil
		}
		s, ok := v.(string)
		if !ok {
			fe := domain.NewFieldError(param, msg, v)
			return v, &fe
		}
		if n := utf8.RuneCountInString(s); n < min || n > max {
			fe := domain.NewFieldError(param, msg, s)
			return v, &fe
		}
		return v, nil
	}
}

// Bool accepts actual booleans and the literal strings "true"/"false",
// coercing the latter. Anything else is rejected with a message naming the
// expected values. Absent values coerce to false.
func Bool(param string) Rule {
	msg := fmt.Sprintf("The %s flag must be either 'true' or 'false'.", param)
	return func(p string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			return false, nil
		}
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			switch t {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}
		fe := domain.NewFieldError(p, msg, v)
		return v, &fe
	}
}

// Enum enforces membership in a fixed value set.
func Enum(allowed []string, msg string) Rule {
	return func(param string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			return v, nil
		}
		if s, ok := v.(string); ok {
			for _, a := range allowed {
				if s == a {
					return v, nil
				}
			}
		}
		fe := domain.NewFieldError(param, msg, v)
		return v, &fe
	}
}

// IntRange enforces an integer in [min, max], coercing whole JSON numbers
// and integer strings.
func IntRange(min, max int, msg string) Rule {
	return func(param string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			return v, nil
		}
		n, ok := toInt(v)
		if !ok || n < min || n > max {
			fe := domain.NewFieldError(param, msg, v)
			return v, &fe
		}
		return n, nil
	}
}

// NonNegative enforces a number ≥ 0, coercing numeric strings.
func NonNegative(msg string) Rule {
	return func(param string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			return v, nil
		}
		f, ok := toFloat(v)
		if !ok || f < 0 {
			fe := domain.NewFieldError(param, msg, v)
			return v, &fe
		}
		return f, nil
	}
}

// Number enforces any numeric value, coercing numeric strings.
func Number(msg string) Rule {
	return func(param string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			return v, nil
		}
		f, ok := toFloat(v)
		if !ok {
			fe := domain.NewFieldError(param, msg, v)
			return v, &fe
		}
		return f, nil
	}
}

// Date enforces a calendar-correct "2006-01-02" date string.
// time.Parse rejects impossible dates like 2023-02-30.
func Date(msg string) Rule {
	return func(param string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			return v, nil
		}
		s, ok := v.(string)
		if !ok {
			fe := domain.NewFieldError(param, msg, v)
			return v, &fe
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			fe := domain.NewFieldError(param, msg, s)
			return v, &fe
		}
		return v, nil
	}
}

// RFC3339 enforces a full ISO-8601 / RFC 3339 timestamp string.
func RFC3339(msg string) Rule {
	return func(param string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			return v, nil
		}
		s, ok := v.(string)
		if !ok {
			fe := domain.NewFieldError(param, msg, v)
			return v, &fe
		}
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			fe := domain.NewFieldError(param, msg, s)
			return v, &fe
		}
		return v, nil
	}
}

// StringArray enforces that a present value is an array of strings.
// A logically optional array may be absent, but a present non-array (or an
// array with non-string members) is rejected.
func StringArray(msg string) Rule {
	return func(param string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			return v, nil
		}
		if _, ok := toStringSlice(v); !ok {
			fe := domain.NewFieldError(param, msg, v)
			return v, &fe
		}
		return v, nil
	}
}

// MinItems enforces a minimum array length on a present array value.
// Non-arrays are left to StringArray to report.
func MinItems(n int, msg string) Rule {
	return func(param string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			return v, nil
		}
		arr, ok := toAnySlice(v)
		if !ok {
			return v, nil
		}
		if len(arr) < n {
			fe := domain.NewFieldError(param, msg, v)
			return v, &fe
		}
		return v, nil
	}
}

// UniqueStrings rejects arrays containing the same string twice,
// order-insensitively. Non-arrays are left to StringArray to report.
func UniqueStrings(msg string) Rule {
	return func(param string, v any, present bool) (any, *domain.FieldError) {
		if !present {
			return v, nil
		}
		items, ok := toStringSlice(v)
		if !ok {
			return v, nil
		}
		seen := make(map[string]bool, len(items))
		for _, s := range items {
			if seen[s] {
				fe := domain.NewFieldError(param, msg, v)
				return v, &fe
			}
			seen[s] = true
		}
		return v, nil
	}
}

// toInt coerces JSON numbers with whole values and integer strings.
func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		if t == float64(int(t)) {
			return int(t), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// toFloat coerces JSON numbers and numeric strings.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case float64:
		return t, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// toAnySlice normalizes []any and []string values to []any.
func toAnySlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// toStringSlice extracts a []string when every member is a string.
func toStringSlice(v any) ([]string, bool) {
	arr, ok := toAnySlice(v)
	if !ok {
		return nil, false
	}
	out := make([]string, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}
