package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		amount   Money
		currency string
		want     string
	}{
		{"zero", Zero(), "COP", "COP 0,00"},
		{"small", MustParse("7.5"), "COP", "COP 7,50"},
		{"thousands", MustParse("71630.5"), "COP", "COP 71.630,50"},
		{"millions", MustParse("1234567.891"), "COP", "COP 1.234.567,89"},
		{"negative", MustParse("-1200"), "COP", "-COP 1.200,00"},
		{"no currency", MustParse("1000"), "", "1.000,00"},
		{"negative rounds to zero", MustParse("-0.004"), "COP", "COP 0,00"},
		{"negative rounds up to a cent", MustParse("-0.005"), "COP", "-COP 0,01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.amount, tt.currency))
		})
	}
}

func TestSumKeepsCents(t *testing.T) {
	amounts := make([]Money, 0, 1000)
	for i := 0; i < 1000; i++ {
		amounts = append(amounts, MustParse("0.10"))
	}

	assert.True(t, Sum(amounts...).Equal(MustParse("100")))
	assert.True(t, FromCents(12345).Equal(MustParse("123.45")))
}

func TestFormatPercentAndCount(t *testing.T) {
	assert.Equal(t, "12.5%", FormatPercent(decimal.NewFromFloat(12.46)))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "12", FormatCount(12))
}
