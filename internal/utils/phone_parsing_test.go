package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMSISDN(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		want    string
		wantErr bool
	}{
		{name: "E164 form", phone: "+254712345678", want: "+254712345678"},
		{name: "national format", phone: "0712345678", want: "+254712345678"},
		{name: "bare international", phone: "254712345678", want: "+254712345678"},
		{name: "with spaces", phone: "0712 345 678", want: "+254712345678"},
		{name: "landline style", phone: "0202123456", want: "+254202123456"},
		{name: "empty", phone: "", wantErr: true},
		{name: "letters", phone: "07abc45678", wantErr: true},
		{name: "too short", phone: "0712", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeMSISDN(tt.phone)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePhoneFormat(t *testing.T) {
	assert.NoError(t, ValidatePhoneFormat("+254712345678"))
	assert.NoError(t, ValidatePhoneFormat("254712345678"))
	assert.Error(t, ValidatePhoneFormat("not-a-phone"))
	assert.Error(t, ValidatePhoneFormat("12"))
}

func TestMsisdnDigits(t *testing.T) {
	assert.Equal(t, "254712345678", MsisdnDigits("+254712345678"))
	assert.Equal(t, "254712345678", MsisdnDigits("254712345678"))
}
