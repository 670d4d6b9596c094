package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRound2(t *testing.T) {
	assert.True(t, d("1.24").Equal(Round2(d("1.235"))))
	assert.True(t, d("50").Equal(Round2(d("50.001"))))
}

func TestClamp(t *testing.T) {
	assert.True(t, d("20").Equal(Clamp(d("35"), d("20"))))
	assert.True(t, Zero.Equal(Clamp(d("-1"), d("20"))))
	assert.True(t, d("7.5").Equal(Clamp(d("7.5"), d("20"))))
}

func TestCentavos(t *testing.T) {
	assert.Equal(t, int64(12550), Centavos(d("125.5")))
	assert.Equal(t, int64(101), Centavos(d("1.005")))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "₱0.00", Format(Zero))
	assert.Equal(t, "₱300.00", Format(d("300")))
	assert.Equal(t, "₱1,250.50", Format(d("1250.5")))
	assert.Equal(t, "₱1,000,000.00", Format(d("1000000")))
	assert.Equal(t, "-₱15.00", Format(d("-15")))
}

func TestMarshalAsNumber(t *testing.T) {
	b, err := d("12.50").MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "12.5", string(b))
}
