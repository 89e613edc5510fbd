package resistor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// colorIndex 反查颜色表，用于验证解码值
func colorIndex(t *testing.T, color string) int {
	t.Helper()
	for i, c := range bandColors {
		if c == color {
			return i
		}
	}
	t.Fatalf("unexpected band color: %s", color)
	return -1
}

func decodeFourBand(t *testing.T, bands []string) float64 {
	t.Helper()
	require.Len(t, bands, 4)
	assert.Equal(t, GoldTolerance, bands[3])
	digits := 10*colorIndex(t, bands[0]) + colorIndex(t, bands[1])
	return float64(digits) * math.Pow10(colorIndex(t, bands[2]))
}

func decodeFiveBand(t *testing.T, bands []string) float64 {
	t.Helper()
	require.Len(t, bands, 5)
	assert.Equal(t, GoldTolerance, bands[4])
	digits := 100*colorIndex(t, bands[0]) + 10*colorIndex(t, bands[1]) + colorIndex(t, bands[2])
	// 五环倍率沿用四环指数，因此解码时指数减1
	return float64(digits) * math.Pow10(colorIndex(t, bands[3])-1)
}

func TestColorCode_RoundTrip(t *testing.T) {
	for _, ohms := range []float64{1, 10, 47, 220, 330, 1000, 2200, 4700, 10000, 100000, 1000000} {
		bands := ColorCode(ohms)
		require.NotNil(t, bands, "ohms=%v", ohms)
		assert.InDelta(t, ohms, decodeFourBand(t, bands.FourBand), ohms*1e-9, "4-band ohms=%v", ohms)
		assert.InDelta(t, ohms, decodeFiveBand(t, bands.FiveBand), ohms*1e-9, "5-band ohms=%v", ohms)
	}
}

func TestColorCode_KnownValues(t *testing.T) {
	bands := ColorCode(220)
	require.NotNil(t, bands)
	assert.Equal(t, []string{"Red", "Red", "Brown", GoldTolerance}, bands.FourBand)
	assert.Equal(t, []string{"Red", "Red", "Black", "Brown", GoldTolerance}, bands.FiveBand)

	bands = ColorCode(4700)
	require.NotNil(t, bands)
	assert.Equal(t, []string{"Yellow", "Violet", "Red", GoldTolerance}, bands.FourBand)
}

func TestColorCode_InvalidInput(t *testing.T) {
	assert.Nil(t, ColorCode(0))
	assert.Nil(t, ColorCode(-5))
	assert.Nil(t, ColorCode(math.NaN()))
	assert.Nil(t, ColorCode(math.Inf(1)))
}

func TestColorCode_OutOfRange(t *testing.T) {
	// 需要两位指数的倍率不可表示
	assert.Nil(t, ColorCode(0.001))
	assert.Nil(t, ColorCode(1e10))
}

func TestColorCode_Idempotent(t *testing.T) {
	first := ColorCode(4700)
	second := ColorCode(4700)
	require.NotNil(t, first)
	assert.Equal(t, first, second)
}

func TestExtractOhmValues(t *testing.T) {
	assert.Equal(t, []float64{4700, 220}, ExtractOhmValues("resistor of 4.7k and 220 ohm"))
	assert.Equal(t, []float64{220}, ExtractOhmValues("220 220 ohm"))
	assert.Equal(t, []float64{2200000, 1000000000}, ExtractOhmValues("2.2M 和 1g 的色环"))
	assert.Empty(t, ExtractOhmValues("no numbers here"))
}

func TestFormatAnswer(t *testing.T) {
	answer, ok := FormatAnswer([]float64{220, 4700})
	require.True(t, ok)
	assert.Contains(t, answer, "220 Ω: 4-band: Red - Red - Brown - Gold (±5%)")
	assert.Contains(t, answer, "4700 Ω: 4-band: Yellow - Violet - Red - Gold (±5%)")

	// 全部超出可表示范围时降级
	_, ok = FormatAnswer([]float64{0.001})
	assert.False(t, ok)
}
