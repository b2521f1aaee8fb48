package tax

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("01/06/2024 - 30/06/2024")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), p.From)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), p.To)
	assert.Equal(t, "01/06/2024", p.FromString())
	assert.Equal(t, "30/06/2024", p.ToString())
	assert.Equal(t, "01/06/2024 - 30/06/2024", p.String())
}

func TestParsePeriod_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		period string
	}{
		{name: "empty string", period: ""},
		{name: "single date", period: "01/06/2024"},
		{name: "wrong separator", period: "01/06/2024 to 30/06/2024"},
		{name: "three dates", period: "01/06/2024 - 15/06/2024 - 30/06/2024"},
		{name: "bad start date", period: "32/06/2024 - 30/06/2024"},
		{name: "bad end date", period: "01/06/2024 - 31/13/2024"},
		{name: "US date format", period: "06/31/2024 - 06/01/2024"},
		{name: "end before start", period: "30/06/2024 - 01/06/2024"},
		{name: "garbage", period: "not a period"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePeriod(tt.period)
			assert.Error(t, err)
		})
	}
}

func TestParsePeriod_TrimsWhitespace(t *testing.T) {
	p, err := ParsePeriod("01/06/2024 -  30/06/2024")
	require.NoError(t, err)
	assert.Equal(t, "30/06/2024", p.ToString())
}
