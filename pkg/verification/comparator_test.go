package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	options := []Option{{Label: "Residential", Value: 1}, {Label: "Commercial", Value: 2}}

	tests := []struct {
		name     string
		self     any
		options  []Option
		expected []Status
	}{
		{"value in options", 1, options, []Status{StatusCorrect, StatusIncorrect}},
		{"value in options as float", 2.0, options, []Status{StatusCorrect, StatusIncorrect}},
		{"value in options as string", "2", options, []Status{StatusCorrect, StatusIncorrect}},
		{"value outside options", 9, options, []Status{StatusIncorrect}},
		{"nil with options", nil, options, []Status{StatusIncorrect}},
		{"value without options", "Sunrise Towers", nil, []Status{StatusCorrect, StatusIncorrect}},
		{"empty string without options", "", nil, []Status{StatusCorrect, StatusIncorrect}},
		{"nil without options", nil, nil, []Status{StatusIncorrect}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.self, tt.options))
		})
	}
}

func TestClassifyAlwaysOffersIncorrect(t *testing.T) {
	values := []any{nil, "", 0, 1, "x", 3.5, true}
	for _, v := range values {
		assert.Contains(t, Classify(v, nil), StatusIncorrect)
		assert.Contains(t, Classify(v, YesNoOptions), StatusIncorrect)
	}
}

func TestSanitizeNumeric(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"1200", "1200"},
		{"12a3", "123"},
		{"1,200.50 sqft", "120050"},
		{"", ""},
		{"abc", ""},
		{"٣4", "4"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SanitizeNumeric(tt.in)
			assert.Equal(t, tt.out, got)
			assert.Equal(t, got, SanitizeNumeric(got), "sanitize must be idempotent")
		})
	}
}

func TestLooseEqual(t *testing.T) {
	assert.True(t, LooseEqual(3, "3"))
	assert.True(t, LooseEqual(3.0, int64(3)))
	assert.True(t, LooseEqual(" yes ", "yes"))
	assert.True(t, LooseEqual(nil, nil))
	assert.False(t, LooseEqual(nil, ""))
	assert.False(t, LooseEqual(3, 4))
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{"yes", "YES", "true", "1", true, 1, 1.0} {
		assert.True(t, Truthy(v), "%v", v)
	}
	for _, v := range []any{"no", "", nil, false, 0, "0"} {
		assert.False(t, Truthy(v), "%v", v)
	}
}
