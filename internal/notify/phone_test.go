package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		ok       bool
	}{
		{name: "bare 10 digit", raw: "5551234567", expected: "+15551234567", ok: true},
		{name: "10 digit with punctuation", raw: "(555) 123-4567", expected: "+15551234567", ok: true},
		{name: "11 digit leading 1", raw: "15551234567", expected: "+15551234567", ok: true},
		{name: "already e164", raw: "+15551234567", expected: "+15551234567", ok: true},
		{name: "e164 non us", raw: "+447911123456", expected: "+447911123456", ok: true},
		{name: "dotted", raw: "555.123.4567", expected: "+15551234567", ok: true},
		{name: "too short", raw: "123", ok: false},
		{name: "11 digit without leading 1", raw: "25551234567", ok: false},
		{name: "letters", raw: "555-CALL-NOW", ok: false},
		{name: "empty", raw: "", ok: false},
		{name: "plus with too few digits", raw: "+1234", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePhone(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
