// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRegistration struct {
	Username string `validate:"required,username"`
	Password string `validate:"required,strong_password"`
}

func TestStrongPasswordRule(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Str0ngPass!x", true},
		{"short1!A", true},
		{"alllowercase1!", false},
		{"ALLUPPERCASE1!", false},
		{"NoNumbersHere!", false},
		{"NoSpecials123", false},
		{"Ab1!", false},
	}

	for _, tt := range tests {
		err := ValidateStruct(&sampleRegistration{Username: "validuser", Password: tt.password})
		if tt.valid {
			assert.NoError(t, err, "password %q", tt.password)
		} else {
			assert.Error(t, err, "password %q", tt.password)
		}
	}
}

func TestUsernameRule(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"glenfoyle", true},
		{"user_42", true},
		{"ab", false},
		{"has space", false},
		{"has-dash", false},
	}

	for _, tt := range tests {
		err := ValidateStruct(&sampleRegistration{Username: tt.username, Password: "Str0ngPass!x"})
		if tt.valid {
			assert.NoError(t, err, "username %q", tt.username)
		} else {
			assert.Error(t, err, "username %q", tt.username)
		}
	}
}

func TestGetValidationErrors(t *testing.T) {
	err := ValidateStruct(&sampleRegistration{})
	errors := GetValidationErrors(err)

	assert.Len(t, errors, 2)
	for _, e := range errors {
		assert.Equal(t, "required", e.Tag)
		assert.NotEmpty(t, e.Message)
	}
}
