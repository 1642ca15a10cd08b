package verification

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Status is the inspector's verdict on a self-declared value
type Status string

const (
	StatusCorrect   Status = "Correct"
	StatusIncorrect Status = "Incorrect"
)

// FieldType selects the editor unlocked when a field is marked Incorrect
type FieldType string

const (
	FieldDate      FieldType = "date"
	FieldYearMonth FieldType = "yearMonth"
	FieldNumber    FieldType = "number"
	FieldText      FieldType = "text"
	FieldSelect    FieldType = "select"
)

// Valid reports whether t is a known editor type
func (t FieldType) Valid() bool {
	switch t {
	case FieldDate, FieldYearMonth, FieldNumber, FieldText, FieldSelect:
		return true
	}
	return false
}

// Option is one entry of an enumerated field
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// YesNoOptions backs the boolean feature flags
var YesNoOptions = []Option{
	{Label: "Yes", Value: "yes"},
	{Label: "No", Value: "no"},
}

// Classify returns the statuses an inspector may choose for a field.
//
// An out-of-domain declaration can only be corrected, and so can a missing one:
//   - options given and selfValue matches none of them: [Incorrect]
//   - selfValue present: [Correct, Incorrect]
//   - otherwise: [Incorrect]
func Classify(selfValue any, options []Option) []Status {
	if len(options) > 0 && !containsValue(options, selfValue) {
		return []Status{StatusIncorrect}
	}
	if selfValue != nil {
		return []Status{StatusCorrect, StatusIncorrect}
	}
	return []Status{StatusIncorrect}
}

// Allows reports whether s is among the statuses Classify offers
func Allows(statuses []Status, s Status) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

// SanitizeNumeric drops every non-digit character. Input is never rejected.
func SanitizeNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LooseEqual compares two wire values by canonical string form, so the id 3
// decoded as float64 matches "3".
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return canonical(a) == canonical(b)
}

// OptionLabel returns the label of the option whose value matches v
func OptionLabel(options []Option, v any) (string, bool) {
	for _, o := range options {
		if LooseEqual(o.Value, v) {
			return o.Label, true
		}
	}
	return "", false
}

func containsValue(options []Option, v any) bool {
	_, ok := OptionLabel(options, v)
	return ok
}

func canonical(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimFunc(x, unicode.IsSpace)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// isBlank reports whether v counts as unanswered
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case float64:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	case uint:
		return x == 0
	case bool:
		return !x
	case time.Time:
		return x.IsZero()
	}
	return false
}

// Truthy interprets a flag value the way the mobile client does ("yes", true, 1)
func Truthy(v any) bool {
	switch x := v.(type) {
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "yes" || s == "true" || s == "1" || s == "y"
	case *bool:
		return x != nil && *x
	}
	return !isBlank(v)
}
