package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		username string
		valid    bool
	}{
		{"ayesha", true},
		{"user_name-01", true},
		{"ab", false},                    // too short
		{"user with spaces", false},      // invalid characters
		{"user@example", false},          // invalid characters
		{"abcdefghijklmnopqrstuvwxyz01234", false}, // 31 chars
	}

	for _, tc := range cases {
		ok, msg := ValidateUsername(tc.username)
		assert.Equal(t, tc.valid, ok, "username %q", tc.username)
		if !tc.valid {
			assert.NotEmpty(t, msg)
		}
	}
}

func TestValidateStruct(t *testing.T) {
	type form struct {
		Email string `validate:"required,email"`
		Name  string `validate:"required,min=3"`
	}

	v := NewValidator()

	assert.NoError(t, v.ValidateStruct(form{Email: "a@example.com", Name: "Ayesha"}))

	err := v.ValidateStruct(form{Email: "not-an-email", Name: "x"})
	assert.Error(t, err)

	fields := FormatValidationErrors(err)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "name")
}
