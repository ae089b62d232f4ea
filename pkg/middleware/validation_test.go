package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockTimeValidator(t *testing.T) {
	v := GetValidator()

	type input struct {
		Time string `validate:"omitempty,hhmm"`
	}

	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"zero padded morning", "09:30", true},
		{"midnight", "00:00", true},
		{"last minute", "23:59", true},
		{"empty is skipped", "", true},
		{"no zero padding", "9:30", false},
		{"hour out of range", "24:00", false},
		{"minute out of range", "10:60", false},
		{"not a clock time", "soon", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(input{Time: tt.value})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStopTypeValidator(t *testing.T) {
	v := GetValidator()

	type input struct {
		Type string `validate:"stop_type"`
	}

	assert.NoError(t, v.Struct(input{Type: "pickup"}))
	assert.NoError(t, v.Struct(input{Type: "dropoff"}))
	assert.NoError(t, v.Struct(input{Type: "intermediate"}))
	assert.Error(t, v.Struct(input{Type: "warehouse"}))
}

func TestRequestModeValidator(t *testing.T) {
	v := GetValidator()

	type input struct {
		Mode string `validate:"request_mode"`
	}

	assert.NoError(t, v.Struct(input{Mode: "direct"}))
	assert.NoError(t, v.Struct(input{Mode: "journey"}))
	assert.Error(t, v.Struct(input{Mode: "express"}))
}
