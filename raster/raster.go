package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Text is rasterized at SupersampleFactor times the nominal font size and
// the compositor scales the result back down by DownscaleFactor, which
// keeps glyph edges crisp on the page. The two constants are a pair:
// change them together.
const (
	SupersampleFactor         = 4
	DownscaleFactor   float64 = 0.25
)

// padPx pads the tight bounding box (at supersampled scale) so ascenders,
// descenders and diacritics are not clipped at the image edge.
const padPx = 5

const fontDPI = 72 // 1 px = 1 pt at supersampled scale, before downscale

// Image is the ephemeral raster artifact for one (text, size, color) tuple.
// WidthPx/HeightPx are the true measured dimensions of the trimmed image;
// they, not the requested font size, drive the composited overlay size,
// because actual glyph metrics vary by script.
type Image struct {
	PNG      []byte // RGBA-encoded, transparent background
	WidthPx  int
	HeightPx int
}

// RenderError reports a rasterization failure: the font could not be
// prepared or the text could not be measured or encoded.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("raster: %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Rasterizer renders single-line text labels into tightly cropped images.
// One Rasterizer holds one parsed font and is not safe for concurrent use;
// see Pool.
type Rasterizer struct {
	fnt *opentype.Font
}

func NewRasterizer(fnt *opentype.Font) *Rasterizer {
	return &Rasterizer{fnt: fnt}
}

// Rasterize renders text at fontSize (supersampled, see SupersampleFactor)
// in the given color onto a transparent background. Layout is single-line,
// no wrapping. Callers skip empty and whitespace-only values before
// calling; text with no visible glyphs is a RenderError.
func (r *Rasterizer) Rasterize(text string, fontSize float64, col color.Color) (*Image, error) {
	face, err := opentype.NewFace(r.fnt, &opentype.FaceOptions{
		Size:    fontSize * SupersampleFactor,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &RenderError{Op: "prepare face", Err: err}
	}
	defer func() {
		_ = face.Close()
	}()

	bounds, _ := font.BoundString(face, text)
	if bounds.Empty() {
		return nil, &RenderError{Op: "measure", Err: fmt.Errorf("no visible glyphs in %q", text)}
	}

	w := (bounds.Max.X - bounds.Min.X).Ceil() + 2*padPx
	h := (bounds.Max.Y - bounds.Min.Y).Ceil() + 2*padPx

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	drawer := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		// Shift the pen so the bounding box lands inside the padding
		Dot: fixed.Point26_6{
			X: fixed.I(padPx) - bounds.Min.X,
			Y: fixed.I(padPx) - bounds.Min.Y,
		},
	}
	drawer.DrawString(text)

	var buf bytes.Buffer
	if err = png.Encode(&buf, img); err != nil {
		return nil, &RenderError{Op: "encode", Err: err}
	}
	return &Image{
		PNG:      buf.Bytes(),
		WidthPx:  w,
		HeightPx: h,
	}, nil
}
