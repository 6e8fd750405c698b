package textfit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// charMeasure approximates a monospace font: every rune is 0.6em wide
// and a line is exactly one em tall.
func charMeasure(text string, fontSize float64) (float64, float64) {
	return float64(len(text)) * fontSize * 0.6, fontSize
}

func TestFitNoWrapAtLargestSize(t *testing.T) {
	// "OK" at size 24 measures 28.8 x 24.
	result := Fit("OK", 100, 30, DefaultSizes, charMeasure)

	assert.Equal(t, "OK", result.Text)
	assert.Equal(t, 24.0, result.FontSize)
}

func TestFitWrapsWhenTooWide(t *testing.T) {
	text := "one two three four five six seven eight"
	boxWidth := 80.0

	result := Fit(text, boxWidth, 200, DefaultSizes, charMeasure)

	lines := strings.Split(result.Text, "\n")
	require.Greater(t, len(lines), 1, "expected a multi-line result")
	for _, line := range lines {
		width, _ := charMeasure(line, result.FontSize)
		assert.LessOrEqual(t, width, boxWidth, "line %q too wide", line)
	}
	// Wrapping must preserve the words and their order.
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.ReplaceAll(result.Text, "\n", " ")))
}

func TestFitStepsDownSizesUntilHeightFits(t *testing.T) {
	text := "one two three four"
	// Wide enough for two words per line at size 10 but not at 24; the
	// height budget rules out the taller wraps.
	result := Fit(text, 90, 21, DefaultSizes, charMeasure)

	assert.Less(t, result.FontSize, 24.0)
	_, lineHeight := charMeasure("x", result.FontSize)
	lineCount := len(strings.Split(result.Text, "\n"))
	assert.LessOrEqual(t, float64(lineCount)*lineHeight, 21.0)
}

func TestFitOverlongWordGetsOwnLine(t *testing.T) {
	result := Fit("a Pneumonoultramicroscopic b", 50, 1000, []float64{10}, charMeasure)

	lines := strings.Split(result.Text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Pneumonoultramicroscopic", lines[1])
}

func TestFitFallsBackToSmallestSizeOnOverflow(t *testing.T) {
	// Nothing fits a 10x10 box; the fitter still answers with the wrap
	// at the smallest candidate size.
	result := Fit("definitely far too much caption text", 10, 10, DefaultSizes, charMeasure)

	assert.Equal(t, 10.0, result.FontSize)
	assert.NotEmpty(t, result.Text)
}

func TestFitEmptySizeLadderUsesDefaults(t *testing.T) {
	result := Fit("hello", 1000, 1000, nil, charMeasure)

	assert.Equal(t, DefaultSizes[0], result.FontSize)
	assert.Equal(t, "hello", result.Text)
}

func TestFitZeroBoxStillReturns(t *testing.T) {
	result := Fit("some caption", 0, 0, []float64{12}, charMeasure)

	assert.Equal(t, 12.0, result.FontSize)
	assert.Equal(t, "some\ncaption", result.Text)
}

func TestFitEmptyTextWrapsToItself(t *testing.T) {
	result := Fit("", 100, 100, DefaultSizes, charMeasure)

	assert.Equal(t, "", result.Text)
	assert.Equal(t, 24.0, result.FontSize)
}

func TestFitSingleCandidateSize(t *testing.T) {
	result := Fit("hi there", 1000, 1000, []float64{14}, charMeasure)

	assert.Equal(t, 14.0, result.FontSize)
	assert.Equal(t, "hi there", result.Text)
}
