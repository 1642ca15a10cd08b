package verification

import (
	"sort"
	"sync"
)

// Draft accumulates the overrides emitted by many field cards. It never
// touches the fetched VerifiedRecord.
type Draft struct {
	mu     sync.Mutex
	values map[string]any
}

// NewDraft returns an empty draft
func NewDraft() *Draft {
	return &Draft{values: make(map[string]any)}
}

// DraftFrom seeds a draft with persisted values
func DraftFrom(values map[string]any) *Draft {
	d := NewDraft()
	for k, v := range values {
		d.values[k] = v
	}
	return d
}

// Set is a ChangeFunc
func (d *Draft) Set(name string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[name] = value
}

// Get returns the override for name
func (d *Draft) Get(name string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.values[name]
	return v, ok
}

// Values returns a copy of every override
func (d *Draft) Values() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]any, len(d.values))
	for k, v := range d.values {
		out[k] = v
	}
	return out
}

// Bind builds one card per spec, wired to the draft and restored from states
func (d *Draft) Bind(specs []FieldSpec, states map[string]CardState) []*FieldCard {
	cards := make([]*FieldCard, 0, len(specs))
	for _, spec := range specs {
		cards = append(cards, RestoreFieldCard(spec, states[spec.Name], d.Set))
	}
	return cards
}

// MissingRequired lists required cards without a verdict, in name order
func MissingRequired(cards []*FieldCard) []string {
	var missing []string
	for _, c := range cards {
		if c.spec.Required && !c.Answered() {
			missing = append(missing, c.spec.Name)
		}
	}
	sort.Strings(missing)
	return missing
}

// CardStates snapshots the cards for persistence
func CardStates(cards []*FieldCard) map[string]CardState {
	out := make(map[string]CardState, len(cards))
	for _, c := range cards {
		if c.Answered() || c.state.Value != nil {
			out[c.spec.Name] = c.state
		}
	}
	return out
}

// FindCard returns the card named name
func FindCard(cards []*FieldCard, name string) *FieldCard {
	for _, c := range cards {
		if c.spec.Name == name {
			return c
		}
	}
	return nil
}
