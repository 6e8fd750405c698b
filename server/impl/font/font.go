package font

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Provider hands out faces for the caption font at arbitrary sizes. The
// parsed font is immutable; faces are created per request so callers own
// their measurement state instead of sharing a process-wide cache.
type Provider interface {
	Face(size float64) xfont.Face
}

type provider struct {
	font *truetype.Font
}

// New parses the TTF file at path. An empty path selects the embedded
// Go Regular fallback, which keeps rendering and tests working without
// font assets on disk.
func New(path string) (Provider, error) {
	if path == "" {
		parsed, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fallback font: %w", err)
		}
		return &provider{font: parsed}, nil
	}

	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font file %s: %w", path, err)
	}
	return &provider{font: parsed}, nil
}

func (p *provider) Face(size float64) xfont.Face {
	return truetype.NewFace(p.font, &truetype.Options{Size: size})
}
