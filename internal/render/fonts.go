package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const dpi = 96

type fontFace struct {
	font *truetype.Font
	face font.Face
	size float64
}

func loadFace(ttf []byte, size float64) (*fontFace, error) {
	ft, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFont, err)
	}
	face := truetype.NewFace(ft, &truetype.Options{Size: size, DPI: dpi, Hinting: font.HintingFull})
	return &fontFace{font: ft, face: face, size: size}, nil
}

func loadRegular(size float64) (*fontFace, error) { return loadFace(goregular.TTF, size) }
func loadBold(size float64) (*fontFace, error)    { return loadFace(gobold.TTF, size) }

// width returns the advance of s in pixels.
func (f *fontFace) width(s string) int {
	d := font.Drawer{Face: f.face}
	return d.MeasureString(s).Ceil()
}

// px is the em size in pixels.
func (f *fontFace) px() int {
	return int(f.size * dpi / 72)
}

func (f *fontFace) ascent() int {
	return f.face.Metrics().Ascent.Ceil()
}

// newContext prepares a freetype context drawing onto dst.
func newContext(dst *image.RGBA, f *fontFace, col color.Color) *freetype.Context {
	c := freetype.NewContext()
	c.SetDPI(dpi)
	c.SetFont(f.font)
	c.SetFontSize(f.size)
	c.SetClip(dst.Bounds())
	c.SetDst(dst)
	c.SetSrc(image.NewUniform(col))
	c.SetHinting(font.HintingFull)
	return c
}

func drawString(c *freetype.Context, s string, x, baseline int) (fixed.Point26_6, error) {
	return c.DrawString(s, freetype.Pt(x, baseline))
}
