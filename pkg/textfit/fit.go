// Package textfit chooses a font size and line wrap for a caption so it
// renders inside a fixed-size box. Measurement is delegated to the caller
// through a MeasureFunc, so the package has no font state of its own and
// any raster/text library can back it.
package textfit

import "strings"

// MeasureFunc returns the rendered width and height of one line of text at
// the given font size.
type MeasureFunc func(text string, fontSize float64) (width, height float64)

// FitResult is the chosen rendering for one caption. Text may contain
// newlines when the caption was wrapped.
type FitResult struct {
	Text     string
	FontSize float64
}

// DefaultSizes is the candidate font-size ladder used when the caller does
// not supply one. Must stay strictly descending.
var DefaultSizes = []float64{24, 20, 18, 16, 14, 12, 10}

// Fit tries candidate sizes from largest to smallest. At each size the text
// is accepted unwrapped if it fits the box as a single line, or wrapped if
// the wrapped line count still fits the box height. When no size fits, the
// text is wrapped at the smallest candidate size and returned even though
// it overflows; the fitter always produces something renderable.
func Fit(text string, boxWidth, boxHeight float64, sizes []float64, measure MeasureFunc) FitResult {
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}

	for _, size := range sizes {
		width, lineHeight := measure(text, size)
		if width <= boxWidth && lineHeight <= boxHeight {
			return FitResult{Text: text, FontSize: size}
		}

		wrapped, lineCount := wrap(text, size, boxWidth, measure)
		if float64(lineCount)*lineHeight <= boxHeight {
			return FitResult{Text: wrapped, FontSize: size}
		}
	}

	smallest := sizes[len(sizes)-1]
	wrapped, _ := wrap(text, smallest, boxWidth, measure)
	return FitResult{Text: wrapped, FontSize: smallest}
}

// wrap greedily packs words into lines no wider than boxWidth. A single
// word wider than the box gets a line of its own; words are never split.
// The empty string wraps to itself with zero lines.
func wrap(text string, fontSize, boxWidth float64, measure MeasureFunc) (string, int) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text, 0
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if width, _ := measure(candidate, fontSize); width <= boxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	lines = append(lines, current)

	return strings.Join(lines, "\n"), len(lines)
}
