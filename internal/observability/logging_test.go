package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	assert.NotNil(t, Logger())
}

func TestMaskPIN(t *testing.T) {
	tests := []struct {
		name string
		pin  string
		want string
	}{
		{name: "full PIN", pin: "A012345678Z", want: "A********8Z"},
		{name: "short value", pin: "A1", want: "***"},
		{name: "empty", pin: "", want: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskPIN(tt.pin))
		})
	}
}

func TestMaskIDNumber(t *testing.T) {
	assert.Equal(t, "12****78", MaskIDNumber("12345678"))
	assert.Equal(t, "***", MaskIDNumber("12"))
}

func TestMaskMSISDN(t *testing.T) {
	assert.Equal(t, "+254*****678", MaskMSISDN("+254712345678"))
	assert.Equal(t, "******", MaskMSISDN("12345"))
}
