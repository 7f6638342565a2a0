package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signupInput struct {
	Password string `validate:"password_strength"`
	Phone    string `validate:"phone"`
}

type quietHoursInput struct {
	Start string `validate:"clock"`
	End   string `validate:"clock"`
}

func TestPasswordStrength(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "strong", password: "Dinker42x", valid: true},
		{name: "too short", password: "Din42", valid: false},
		{name: "no uppercase", password: "dinker42x", valid: false},
		{name: "no digit", password: "Dinkerxyz", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(signupInput{Password: tt.password})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPhone(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(signupInput{Password: "Dinker42x", Phone: "5551234567"}))
	assert.NoError(t, v.Validate(signupInput{Password: "Dinker42x", Phone: "+15551234567"}))
	assert.NoError(t, v.Validate(signupInput{Password: "Dinker42x", Phone: ""}))
	assert.Error(t, v.Validate(signupInput{Password: "Dinker42x", Phone: "123"}))
}

func TestClock(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(quietHoursInput{Start: "22:00", End: "07:30"}))
	assert.Error(t, v.Validate(quietHoursInput{Start: "24:00", End: "07:30"}))
	assert.Error(t, v.Validate(quietHoursInput{Start: "late", End: "07:30"}))
}
