// Package thumbnail renders the placeholder image stored with new projects.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

const (
	defaultWidth  = 300
	defaultHeight = 200
)

var (
	roomColor  = color.RGBA{R: 0xff, G: 0x95, B: 0x00, A: 0xff}
	emptyColor = color.RGBA{R: 0x8e, G: 0x8e, B: 0x93, A: 0xff}
)

// Generator produces diagonal-gradient PNG placeholders: orange for projects
// with a room, gray otherwise.
type Generator struct {
	Width  int
	Height int
}

// NewGenerator creates a generator with the default 300x200 size.
func NewGenerator() *Generator {
	return &Generator{Width: defaultWidth, Height: defaultHeight}
}

// Placeholder renders the PNG for a project with or without a room.
func (g *Generator) Placeholder(hasRoom bool) ([]byte, error) {
	w, h := g.Width, g.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %dx%d", w, h)
	}

	base := emptyColor
	if hasRoom {
		base = roomColor
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	span := float64(w + h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// alpha fades from 0.8 at the top-left to 0.4 at the bottom-right
			alpha := 0.8 - 0.4*float64(x+y)/span
			img.SetRGBA(x, y, blend(base, alpha))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

// blend composites c at the given opacity over white.
func blend(c color.RGBA, alpha float64) color.RGBA {
	mix := func(v uint8) uint8 {
		return uint8(float64(v)*alpha + 255*(1-alpha))
	}
	return color.RGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: 0xff}
}
