// Package avatar generates placeholder profile images from a user's name.
package avatar

import (
	"bytes"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"unicode"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const renderSize = 256

// The glyph canvas the basicfont text is drawn onto before upscaling.
const glyphCanvas = 24

var palette = []color.RGBA{
	{R: 0x7c, G: 0x3a, B: 0xed, A: 0xff},
	{R: 0x2f, G: 0x6f, B: 0xed, A: 0xff},
	{R: 0x0e, G: 0x9f, B: 0x6e, A: 0xff},
	{R: 0xd9, G: 0x48, B: 0x4b, A: 0xff},
	{R: 0xc2, G: 0x6a, B: 0x1d, A: 0xff},
	{R: 0x0f, G: 0x76, B: 0x8e, A: 0xff},
}

// Initials derives up to two uppercase initials from a display name.
// Empty or unusable names produce "?".
func Initials(name string) string {
	fields := strings.Fields(name)
	var b strings.Builder
	for _, f := range fields {
		r := []rune(f)[0]
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if b.Len() >= 2 {
			break
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

// Render produces a PNG avatar: the initials centered on a background color
// picked deterministically from the name.
func Render(name string) ([]byte, error) {
	initials := Initials(name)
	bg := palette[colorIndex(name)]

	small := image.NewRGBA(image.Rect(0, 0, glyphCanvas, glyphCanvas))
	draw.Draw(small, small.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, initials).Ceil()
	drawer := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I((glyphCanvas - textWidth) / 2),
			Y: fixed.I((glyphCanvas + face.Metrics().Ascent.Ceil()) / 2),
		},
	}
	drawer.DrawString(initials)

	// Upscale with nearest neighbor to keep the glyph edges crisp.
	dst := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), small, small.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func colorIndex(name string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return int(h.Sum32() % uint32(len(palette)))
}
