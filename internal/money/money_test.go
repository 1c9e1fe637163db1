package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"1200", "1200"},
		{"1200.5", "1200.5"},
		{"1,5", "1.5"},
		{"$ 1.234,50", "1234.5"},
		{"$1,234.50", "1234.5"},
		{"1.234.567", "1234567"},
		{"$ 1.200", "1200"},
		{"1.200", "1.2"},
		{"-", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("doce")
	assert.Error(t, err)
	assert.True(t, MustParse("doce").IsZero())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$ 1.234,50", Format(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$ 0,00", Format(decimal.Zero))
	assert.Equal(t, "$ 999,99", Format(decimal.RequireFromString("999.99")))
	assert.Equal(t, "-$ 1.000.000,00", Format(decimal.NewFromInt(-1000000)))
}

func TestCell(t *testing.T) {
	assert.InDelta(t, 10.33, Cell(decimal.RequireFromString("10.333")), 0.0001)
}
