//go:build !integration

package chart

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"causalUplift/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metrics(lifts ...float64) []domain.DecileMetric {
	out := make([]domain.DecileMetric, len(lifts))
	for i, l := range lifts {
		out[i] = domain.DecileMetric{Decile: i + 1, LiftPercent: l}
	}
	return out
}

func countColor(img image.Image, c color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if uint8(r>>8) == c.R && uint8(g>>8) == c.G && uint8(bl>>8) == c.B {
				n++
			}
		}
	}
	return n
}

func TestPNGRenderer_Render(t *testing.T) {
	table := metrics(12, 8, 4, 1, 0, -1, -3, math.NaN(), -6, -9)
	before := append([]domain.DecileMetric(nil), table...)

	raw, contentType, err := NewPNGRenderer().Render(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, ContentTypePNG, contentType)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 1000, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())

	assert.Positive(t, countColor(img, colorPositive))
	assert.Positive(t, countColor(img, colorNegative))
	assert.Positive(t, countColor(img, colorUndefined))

	for i := range table {
		assert.Equal(t, before[i].Decile, table[i].Decile)
		if before[i].LiftDefined() {
			assert.Equal(t, before[i].LiftPercent, table[i].LiftPercent)
		}
	}
}

func TestPNGRenderer_AllPositiveHasNoRedBars(t *testing.T) {
	raw, _, err := NewPNGRenderer().Render(context.Background(), metrics(9, 8, 7, 6, 5, 4, 3, 2, 1, 0.5))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Zero(t, countColor(img, colorNegative))
	assert.Zero(t, countColor(img, colorUndefined))
}

func TestPNGRenderer_Errors(t *testing.T) {
	_, _, err := NewPNGRenderer().Render(context.Background(), nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = NewPNGRenderer().Render(ctx, metrics(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLiftRange(t *testing.T) {
	lo, hi := liftRange(metrics(math.NaN(), math.NaN()))
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 1.0, hi)

	lo, hi = liftRange(metrics(10, 0, 5))
	assert.Equal(t, 0.0, lo)
	assert.InDelta(t, 11.0, hi, 1e-9)

	lo, hi = liftRange(metrics(-20, 20))
	assert.InDelta(t, -24.0, lo, 1e-9)
	assert.InDelta(t, 24.0, hi, 1e-9)
}
