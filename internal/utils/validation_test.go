package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateIDNumber(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{name: "typical national ID", id: "12345678", valid: true},
		{name: "short national ID", id: "123456", valid: true},
		{name: "alien ID with letters", id: "AB1234567", valid: true},
		{name: "too short", id: "12345", valid: false},
		{name: "too long", id: "12345678901", valid: false},
		{name: "empty", id: "", valid: false},
		{name: "contains space", id: "1234 5678", valid: false},
		{name: "contains dash", id: "1234-5678", valid: false},
		{name: "contains symbol", id: "12345!78", valid: false},
		{name: "unicode digits", id: "１２３４５６７８", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateIDNumber(tt.id), "ValidateIDNumber(%q)", tt.id)
		})
	}
}

func TestValidatePIN(t *testing.T) {
	tests := []struct {
		name  string
		pin   string
		valid bool
	}{
		{name: "individual PIN", pin: "A012345678Z", valid: true},
		{name: "company PIN", pin: "P051234567Q", valid: true},
		{name: "lowercase prefix", pin: "a012345678Z", valid: false},
		{name: "too few digits", pin: "A01234567Z", valid: false},
		{name: "missing suffix letter", pin: "A0123456789", valid: false},
		{name: "empty", pin: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidatePIN(tt.pin), "ValidatePIN(%q)", tt.pin)
		})
	}
}

func TestValidateYearOfBirth(t *testing.T) {
	assert.True(t, ValidateYearOfBirth(1990))
	assert.True(t, ValidateYearOfBirth(1900))
	assert.False(t, ValidateYearOfBirth(1899))
	assert.False(t, ValidateYearOfBirth(0))
	assert.False(t, ValidateYearOfBirth(3000))
	assert.False(t, ValidateYearOfBirth(-1990))
}
