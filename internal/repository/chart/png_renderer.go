package chart

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"

	"causalUplift/domain"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const ContentTypePNG = "image/png"

var (
	colorPositive  = color.RGBA{0x2c, 0xa0, 0x2c, 0xff}
	colorNegative  = color.RGBA{0xd6, 0x27, 0x28, 0xff}
	colorUndefined = color.RGBA{0xb0, 0xb0, 0xb0, 0xff}
	colorGrid      = color.RGBA{0xe5, 0xe5, 0xe5, 0xff}
	colorAxis      = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// PNGRenderer draws one bar per decile: green for positive lift, red for
// zero or negative lift, a grey tick on the zero line when lift is undefined.
type PNGRenderer struct {
	Width  int
	Height int
	Title  string
	XLabel string
	YLabel string
}

func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{
		Width:  1000,
		Height: 600,
		Title:  "Uplift by Decile (Validation on Test Set)",
		XLabel: "Decile (1 = Most Persuadable)",
		YLabel: "Incremental Conversion Lift (%)",
	}
}

type plotArea struct {
	left, top, right, bottom int
	lo, hi                   float64
}

func (a plotArea) y(v float64) int {
	frac := (a.hi - v) / (a.hi - a.lo)
	return a.top + int(math.Round(frac*float64(a.bottom-a.top)))
}

func (r *PNGRenderer) Render(ctx context.Context, metrics []domain.DecileMetric) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("context error: %w", err)
	}
	if len(metrics) == 0 {
		return nil, "", fmt.Errorf("nothing to render")
	}

	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	lo, hi := liftRange(metrics)
	area := plotArea{left: 80, top: 60, right: r.Width - 30, bottom: r.Height - 70, lo: lo, hi: hi}

	// grid + y tick labels
	const ticks = 5
	for i := 0; i <= ticks; i++ {
		v := lo + (hi-lo)*float64(i)/ticks
		y := area.y(v)
		fill(img, image.Rect(area.left, y, area.right, y+1), colorGrid)
		label := strconv.FormatFloat(v, 'f', 1, 64)
		drawText(img, label, area.left-8-textWidth(label), y+4, colorAxis)
	}

	slot := float64(area.right-area.left) / float64(len(metrics))
	barWidth := int(slot * 0.7)
	if barWidth < 1 {
		barWidth = 1
	}
	zeroY := area.y(0)

	for i, m := range metrics {
		x0 := area.left + int(float64(i)*slot+(slot-float64(barWidth))/2)
		x1 := x0 + barWidth

		label := strconv.Itoa(m.Decile)
		drawText(img, label, x0+(barWidth-textWidth(label))/2, area.bottom+18, colorAxis)

		if !m.LiftDefined() {
			fill(img, image.Rect(x0, zeroY-3, x1, zeroY+3), colorUndefined)
			continue
		}

		c := colorNegative
		if m.LiftPercent > 0 {
			c = colorPositive
		}
		y := area.y(m.LiftPercent)
		fill(img, image.Rect(x0, min(y, zeroY), x1, max(y, zeroY)+1), c)
	}

	// zero reference line
	fill(img, image.Rect(area.left, zeroY, area.right, zeroY+1), colorAxis)

	drawText(img, r.Title, (r.Width-textWidth(r.Title))/2, 30, colorAxis)
	drawText(img, r.YLabel, area.left, area.top-12, colorAxis)
	drawText(img, r.XLabel, (r.Width-textWidth(r.XLabel))/2, r.Height-25, colorAxis)

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), ContentTypePNG, nil
}

// liftRange spans every defined lift and zero, padded by 10%.
func liftRange(metrics []domain.DecileMetric) (lo, hi float64) {
	for _, m := range metrics {
		if !m.LiftDefined() || math.IsInf(m.LiftPercent, 0) {
			continue
		}
		lo = math.Min(lo, m.LiftPercent)
		hi = math.Max(hi, m.LiftPercent)
	}
	if hi-lo < 1e-9 {
		return -1, 1
	}
	pad := (hi - lo) * 0.1
	if lo < 0 {
		lo -= pad
	}
	if hi > 0 {
		hi += pad
	}
	return lo, hi
}

func fill(img *image.RGBA, rect image.Rectangle, c color.Color) {
	draw.Draw(img, rect.Intersect(img.Bounds()), &image.Uniform{c}, image.Point{}, draw.Src)
}

func drawText(img *image.RGBA, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Round()
}
