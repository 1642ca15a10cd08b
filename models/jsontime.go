package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JSONTime accepts the timestamp shapes the mobile client and the database
// produce and always emits RFC3339.
type JSONTime time.Time

var jsonTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseJSONTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range jsonTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp", s)
}

func (jt *JSONTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		*jt = JSONTime(time.Time{})
		return nil
	}
	t, err := parseJSONTime(s)
	if err != nil {
		return fmt.Errorf("JSONTime.UnmarshalJSON: %w", err)
	}
	*jt = JSONTime(t)
	return nil
}

func (jt JSONTime) MarshalJSON() ([]byte, error) {
	t := time.Time(jt)
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

func (jt JSONTime) Value() (driver.Value, error) {
	return time.Time(jt), nil
}

func (jt *JSONTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*jt = JSONTime(time.Time{})
	case time.Time:
		*jt = JSONTime(v)
	case []byte:
		return jt.Scan(string(v))
	case string:
		t, err := parseJSONTime(v)
		if err != nil {
			return fmt.Errorf("JSONTime.Scan: %w", err)
		}
		*jt = JSONTime(t)
	default:
		return fmt.Errorf("JSONTime.Scan: unsupported type %T", src)
	}
	return nil
}

// Time unwraps the value
func (jt JSONTime) Time() time.Time { return time.Time(jt) }
