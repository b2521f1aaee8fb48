package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		obligation Obligation
		want       string
		wantErr    bool
	}{
		{
			name:       "MRI on 50000 rental income",
			amount:     "50000",
			obligation: ObligationMRI,
			want:       "5000.00",
		},
		{
			name:       "TOT on 50000 gross sales",
			amount:     "50000",
			obligation: ObligationTOT,
			want:       "1500.00",
		},
		{
			name:       "NIL return is always zero",
			amount:     "50000",
			obligation: ObligationNIL,
			want:       "0.00",
		},
		{
			name:       "zero amount",
			amount:     "0",
			obligation: ObligationMRI,
			want:       "0.00",
		},
		{
			name:       "rounds to two decimal places",
			amount:     "33333.33",
			obligation: ObligationTOT,
			want:       "1000.00",
		},
		{
			name:       "fractional rounding",
			amount:     "100.55",
			obligation: ObligationMRI,
			want:       "10.06",
		},
		{
			name:       "negative amount rejected",
			amount:     "-1",
			obligation: ObligationMRI,
			wantErr:    true,
		},
		{
			name:       "unknown obligation rejected",
			amount:     "100",
			obligation: Obligation("vat"),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			got, err := Compute(amount, tt.obligation)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatAmount(got))
		})
	}
}

func TestObligationCode(t *testing.T) {
	tests := []struct {
		obligation Obligation
		code       string
	}{
		{ObligationMRI, "33"},
		{ObligationTOT, "8"},
		{ObligationNIL, "4"},
	}

	for _, tt := range tests {
		code, err := tt.obligation.Code()
		require.NoError(t, err)
		assert.Equal(t, tt.code, code)
	}

	_, err := Obligation("unknown").Code()
	assert.Error(t, err)
}

func TestObligationValid(t *testing.T) {
	assert.True(t, ObligationMRI.Valid())
	assert.True(t, ObligationTOT.Valid())
	assert.True(t, ObligationNIL.Valid())
	assert.False(t, Obligation("paye").Valid())
	assert.False(t, Obligation("").Valid())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "5000.00", FormatAmount(decimal.NewFromInt(5000)))
	assert.Equal(t, "0.10", FormatAmount(decimal.NewFromFloat(0.1)))
	assert.Equal(t, "1234.57", FormatAmount(decimal.NewFromFloat(1234.567)))
}
