package verification

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrStatusNotAllowed = errors.New("status not allowed for this field")
	ErrEditorLocked     = errors.New("field must be marked Incorrect before editing")
	ErrWrongEditor      = errors.New("edit does not match the field type")
	ErrOptionNotAllowed = errors.New("value is not one of the field options")
	ErrDateOutOfRange   = errors.New("date must be between 1900-01-01 and today")
)

// earliestDate is the lower bound of the date pickers
var earliestDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// now is swapped in tests
var now = time.Now

// ChangeFunc receives every override a card emits
type ChangeFunc func(name string, value any)

// FieldSpec describes one verifiable field
type FieldSpec struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Type      FieldType `json:"type"`
	Required  bool      `json:"required"`
	Options   []Option  `json:"options,omitempty"`
	SelfValue any       `json:"selfValue"`
	SelfLabel string    `json:"selfLabel"`
	IsCorrect *bool     `json:"isCorrect,omitempty"`
}

// CardState is the part of a card that survives between requests
type CardState struct {
	Status Status `json:"status,omitempty"`
	Value  any    `json:"value,omitempty"`
}

// FieldCard wraps one comparator with its local edit state
type FieldCard struct {
	spec     FieldSpec
	allowed  []Status
	state    CardState
	onChange ChangeFunc
}

// NewFieldCard creates a card. A preset IsCorrect seeds the status without emitting.
func NewFieldCard(spec FieldSpec, onChange ChangeFunc) *FieldCard {
	if onChange == nil {
		onChange = func(string, any) {}
	}
	c := &FieldCard{
		spec:     spec,
		allowed:  Classify(spec.SelfValue, spec.Options),
		onChange: onChange,
	}
	if spec.IsCorrect != nil {
		if *spec.IsCorrect {
			c.state.Status = StatusCorrect
		} else {
			c.state.Status = StatusIncorrect
		}
	}
	return c
}

// RestoreFieldCard rebuilds a card from persisted state. A persisted status the
// comparator no longer offers is dropped.
func RestoreFieldCard(spec FieldSpec, state CardState, onChange ChangeFunc) *FieldCard {
	c := NewFieldCard(spec, onChange)
	if state.Status != "" && Allows(c.allowed, state.Status) {
		c.state = state
	}
	return c
}

func (c *FieldCard) Spec() FieldSpec           { return c.spec }
func (c *FieldCard) State() CardState          { return c.state }
func (c *FieldCard) Status() Status            { return c.state.Status }
func (c *FieldCard) Value() any                { return c.state.Value }
func (c *FieldCard) AllowedStatuses() []Status { return append([]Status(nil), c.allowed...) }

// Editor returns the editor unlocked for the card, or "" while it is locked
func (c *FieldCard) Editor() FieldType {
	if c.state.Status != StatusIncorrect {
		return ""
	}
	return c.spec.Type
}

// Answered reports whether the inspector has chosen a status
func (c *FieldCard) Answered() bool {
	return c.state.Status != ""
}

// SelectStatus records the verdict. Correct collapses the override to the
// declared value itself; Incorrect clears it and unlocks the editor.
func (c *FieldCard) SelectStatus(s Status) error {
	if !Allows(c.allowed, s) {
		return fmt.Errorf("%s: %w", c.spec.Name, ErrStatusNotAllowed)
	}
	c.state.Status = s
	if s == StatusCorrect {
		c.emit(c.spec.SelfValue)
	} else {
		c.emit("")
	}
	return nil
}

// Input handles free text. Number fields keep only their digits.
func (c *FieldCard) Input(text string) error {
	if err := c.unlocked(FieldText, FieldNumber); err != nil {
		return err
	}
	if c.spec.Type == FieldNumber {
		text = SanitizeNumeric(text)
	}
	c.emit(text)
	return nil
}

// PickDate handles the calendar editors. yearMonth keeps month granularity.
func (c *FieldCard) PickDate(t time.Time) error {
	if err := c.unlocked(FieldDate, FieldYearMonth); err != nil {
		return err
	}
	if c.spec.Type == FieldYearMonth {
		t = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
	if t.Before(earliestDate) || t.After(now()) {
		return fmt.Errorf("%s: %w", c.spec.Name, ErrDateOutOfRange)
	}
	c.emit(t.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	return nil
}

// PickOption handles the dropdown editor
func (c *FieldCard) PickOption(v any) error {
	if err := c.unlocked(FieldSelect); err != nil {
		return err
	}
	for _, o := range c.spec.Options {
		if LooseEqual(o.Value, v) {
			c.emit(o.Value)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", c.spec.Name, ErrOptionNotAllowed)
}

// Clear empties a populated override
func (c *FieldCard) Clear() {
	if isBlank(c.state.Value) {
		return
	}
	c.emit("")
}

// DisplayValue is what the card shows once marked Correct
func (c *FieldCard) DisplayValue() string {
	v := c.state.Value
	if c.state.Status == StatusCorrect {
		v = c.spec.SelfValue
	}
	if len(c.spec.Options) > 0 {
		if label, ok := OptionLabel(c.spec.Options, c.spec.SelfValue); ok && c.state.Status == StatusCorrect {
			return label
		}
	}
	if v == nil {
		return ""
	}
	return canonical(v)
}

func (c *FieldCard) unlocked(types ...FieldType) error {
	if c.state.Status != StatusIncorrect {
		return fmt.Errorf("%s: %w", c.spec.Name, ErrEditorLocked)
	}
	for _, t := range types {
		if c.spec.Type == t {
			return nil
		}
	}
	return fmt.Errorf("%s (%s): %w", c.spec.Name, c.spec.Type, ErrWrongEditor)
}

func (c *FieldCard) emit(v any) {
	c.state.Value = v
	c.onChange(c.spec.Name, v)
}
