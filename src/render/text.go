package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var labelFace font.Face

func init() {
	f, err := opentype.Parse(gomono.TTF)
	if err == nil {
		labelFace, err = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    14,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	if err != nil || labelFace == nil {
		labelFace = basicfont.Face7x13
	}
}

// measureText returns the pixel width and height of a label.
func measureText(s string) (int, int) {
	w := font.MeasureString(labelFace, s).Ceil()
	m := labelFace.Metrics()
	return w, (m.Ascent + m.Descent).Ceil()
}

// drawText paints a label with its top-left corner at (x, y).
func drawText(dst *image.RGBA, x, y int, s string, fg, bg color.RGBA) {
	w, h := measureText(s)
	fillRect(dst, image.Rect(x, y, x+w, y+h), bg)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg),
		Face: labelFace,
		Dot:  fixed.P(x, y+labelFace.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// drawTextRotated paints a label rotated a quarter turn counter-clockwise,
// with its top-left corner at (x, y). The drawing primitives cannot lay out
// rotated text, so the label is measured and rendered flat first and the
// pixels are transposed.
func drawTextRotated(dst *image.RGBA, x, y int, s string, fg, bg color.RGBA) {
	w, h := measureText(s)
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	drawText(tmp, 0, 0, s, fg, bg)

	// (tx, ty) in the flat label lands at (x+ty, y+w-1-tx) after rotation.
	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			px := x + ty
			py := y + w - 1 - tx
			if image.Pt(px, py).In(dst.Bounds()) {
				dst.SetRGBA(px, py, tmp.RGBAAt(tx, ty))
			}
		}
	}
}

// rotatedTextSize returns the bounding box of a rotated label.
func rotatedTextSize(s string) (int, int) {
	w, h := measureText(s)
	return h, w
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.SetRGBA(x, y, c)
		}
	}
}

func strokeRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}
