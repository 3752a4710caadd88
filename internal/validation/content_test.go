package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateContentFields(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		fn      func(string) error
		input   string
		wantErr bool
	}{
		{"Title Valid", ValidateTitle, "How do I close a channel?", false},
		{"Title Blank", ValidateTitle, "   ", true},
		{"Title Max", ValidateTitle, strings.Repeat("t", MaxTitleLength), false},
		{"Title Too Long", ValidateTitle, strings.Repeat("t", MaxTitleLength+1), true},
		{"Body Valid", ValidateBody, "details", false},
		{"Body Empty", ValidateBody, "", true},
		{"Body Too Long", ValidateBody, strings.Repeat("b", MaxBodyLength+1), true},
		{"Reason Valid", ValidateReason, "spam", false},
		{"Reason Blank", ValidateReason, "\t", true},
		{"Reason Too Long", ValidateReason, strings.Repeat("r", MaxReasonLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsReservedUsername(t *testing.T) {
	t.Parallel()
	assert.True(t, IsReservedUsername(" ROOT "))
	assert.False(t, IsReservedUsername("rooted"))
}
