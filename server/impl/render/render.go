package render

import (
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/coinmeme-project/coinmeme/pkg/layout"
	"github.com/coinmeme-project/coinmeme/pkg/textfit"
	"github.com/coinmeme-project/coinmeme/pkg/utils"
	"github.com/coinmeme-project/coinmeme/server/impl/font"
)

// Stroke offset in pixels around each glyph for legibility on busy
// backgrounds, matching the classic meme text treatment.
const strokeWidth = 2

// Renderer overlays fitted captions onto template images.
type Renderer struct {
	fonts font.Provider
	sizes []float64
}

// New creates a renderer. A nil size ladder uses the fitter's default.
func New(fonts font.Provider, sizes []float64) *Renderer {
	return &Renderer{fonts: fonts, sizes: sizes}
}

// Overlay draws one caption per field into its placement box and returns
// the composed image. Fields without a caption or without a box are
// skipped. Boxes are assumed to be the final, already de-overlapped set.
func (r *Renderer) Overlay(img image.Image, boxes map[string]layout.Box, captions map[string]string) image.Image {
	dc := gg.NewContextForImage(img)
	imgWidth := float64(dc.Width())
	imgHeight := float64(dc.Height())

	measure := func(text string, size float64) (float64, float64) {
		dc.SetFontFace(r.fonts.Face(size))
		return dc.MeasureString(text)
	}

	for _, field := range utils.SortedKeys(boxes) {
		text, ok := captions[field]
		if !ok || text == "" {
			continue
		}
		box := boxes[field]

		fit := textfit.Fit(text, box.Width*imgWidth, box.Height*imgHeight, r.sizes, measure)
		r.drawFitted(dc, img, fit, box, imgWidth, imgHeight)
	}
	return dc.Image()
}

func (r *Renderer) drawFitted(dc *gg.Context, img image.Image, fit textfit.FitResult, box layout.Box, imgWidth, imgHeight float64) {
	dc.SetFontFace(r.fonts.Face(fit.FontSize))
	lineHeight := dc.FontHeight()
	lines := strings.Split(fit.Text, "\n")

	fill, stroke := captionColors(img, box, imgWidth, imgHeight)

	centerX := box.X * imgWidth
	totalHeight := lineHeight * float64(len(lines))
	startY := box.Y*imgHeight - totalHeight/2 + lineHeight/2

	for i, line := range lines {
		y := startY + float64(i)*lineHeight

		dc.SetColor(stroke)
		for dx := -strokeWidth; dx <= strokeWidth; dx++ {
			for dy := -strokeWidth; dy <= strokeWidth; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				dc.DrawStringAnchored(line, centerX+float64(dx), y+float64(dy), 0.5, 0.5)
			}
		}
		dc.SetColor(fill)
		dc.DrawStringAnchored(line, centerX, y, 0.5, 0.5)
	}
}

// captionColors picks white-on-black or black-on-white by whichever is
// farther from the box region's mean color, so captions stay readable on
// both dark and light template areas.
func captionColors(img image.Image, box layout.Box, imgWidth, imgHeight float64) (fill, stroke color.Color) {
	mean := regionMeanColor(img, box, imgWidth, imgHeight)

	white := colorful.Color{R: 1, G: 1, B: 1}
	black := colorful.Color{R: 0, G: 0, B: 0}
	if mean.DistanceCIEDE2000(white) < mean.DistanceCIEDE2000(black) {
		// Light region: dark text, light stroke.
		return color.Black, color.White
	}
	return color.White, color.Black
}

func regionMeanColor(img image.Image, box layout.Box, imgWidth, imgHeight float64) colorful.Color {
	bounds := img.Bounds()
	left := bounds.Min.X + int(box.Left()*imgWidth)
	right := bounds.Min.X + int(box.Right()*imgWidth)
	top := bounds.Min.Y + int(box.Top()*imgHeight)
	bottom := bounds.Min.Y + int(box.Bottom()*imgHeight)

	const step = 4
	var sumR, sumG, sumB float64
	samples := 0
	for y := top; y < bottom; y += step {
		for x := left; x < right; x += step {
			if !image.Pt(x, y).In(bounds) {
				continue
			}
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			sumR += c.R
			sumG += c.G
			sumB += c.B
			samples++
		}
	}
	if samples == 0 {
		return colorful.Color{}
	}
	return colorful.Color{R: sumR / float64(samples), G: sumG / float64(samples), B: sumB / float64(samples)}
}
