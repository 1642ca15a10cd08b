package verification

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	NotAvailable = "N/A"
	InvalidDate  = "N/A (Invalid Date)"
)

var displayLocation atomic.Pointer[time.Location]

// SetDisplayLocation sets the zone dates are rendered in (defaults to time.Local)
func SetDisplayLocation(loc *time.Location) {
	displayLocation.Store(loc)
}

func location() *time.Location {
	if loc := displayLocation.Load(); loc != nil {
		return loc
	}
	return time.Local
}

// layouts accepted from the API, zoned forms first
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
}

// ParseDate reads the date representations the API and the mobile client produce
func ParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.In(location()), !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return ParseDate(*x)
	case float64:
		return time.UnixMilli(int64(x)).In(location()), true
	case int64:
		return time.UnixMilli(x).In(location()), true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range layouts {
			if t, err := time.ParseInLocation(layout, s, location()); err == nil {
				return t.In(location()), true
			}
		}
	}
	return time.Time{}, false
}

// FormatLocalDate renders dd<sep>mm<sep>yyyy, "N/A" for no value and
// "N/A (Invalid Date)" for something that is not a date.
func FormatLocalDate(v any, separator ...string) string {
	if isBlank(v) {
		return NotAvailable
	}
	t, ok := ParseDate(v)
	if !ok {
		return InvalidDate
	}
	sep := sepOr(separator)
	return fmt.Sprintf("%02d%s%02d%s%04d", t.Day(), sep, int(t.Month()), sep, t.Year())
}

// FormatLocalDateTime renders dd-mm-yyyy hh:mm:ss
func FormatLocalDateTime(v any, separator ...string) string {
	if isBlank(v) {
		return NotAvailable
	}
	t, ok := ParseDate(v)
	if !ok {
		return InvalidDate
	}
	sep := sepOr(separator)
	return fmt.Sprintf("%02d%s%02d%s%04d %02d:%02d:%02d",
		t.Day(), sep, int(t.Month()), sep, t.Year(), t.Hour(), t.Minute(), t.Second())
}

// FormatTimeAMPM renders h:mm AM/PM
func FormatTimeAMPM(v any) string {
	if isBlank(v) {
		return NotAvailable
	}
	t, ok := ParseDate(v)
	if !ok {
		return InvalidDate
	}
	return t.Format("3:04 PM")
}

// FormatDateForAPI renders yyyy-mm-dd, "" when there is no usable date
func FormatDateForAPI(v any) string {
	t, ok := ParseDate(v)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// LabelByValue finds the label of the option holding v, "" when absent
func LabelByValue(options []Option, v any) string {
	if len(options) == 0 || isBlank(v) {
		return ""
	}
	label, _ := OptionLabel(options, v)
	return label
}

// ToTitleCase capitalises each word and lowercases the rest
func ToTitleCase(s string) string {
	// a Caser is stateful, so one per call
	return cases.Title(language.English).String(s)
}

func sepOr(separator []string) string {
	if len(separator) > 0 {
		return separator[0]
	}
	return "-"
}
