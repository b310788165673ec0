// Package transform applies in-place edits to the captured bitmap while a
// selection session is running.
package transform

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"

	"screen-snip/src/capture"
	"screen-snip/src/geom"
)

const (
	// PixelateFactor is the edge length of one pixelation block.
	PixelateFactor = 8
	// MarkWidth is the thickness of a marker frame in pixels.
	MarkWidth = 3
	// MarkAlpha is the opacity of the marker fill, 0..255.
	MarkAlpha = 128
)

// MarkColor is the marker frame color.
var MarkColor = color.RGBA{R: 255, A: 255}

func clampToImage(r geom.Rect, img *image.RGBA) (geom.Rect, bool) {
	if !r.IsValid() {
		return geom.Rect{}, false
	}
	b := img.Bounds()
	bounds := geom.Bounds{Width: int32(b.Dx()), Height: int32(b.Dy())}
	n := bounds.ClampRect(r.Normalized())
	return n, true
}

// Pixelate replaces the rectangle with a block-averaged version of itself.
// Each block is blockSize pixels square; the average color of the pixels a
// block covers fills the whole block. Invalid rectangles are ignored.
func Pixelate(img *image.RGBA, r geom.Rect, blockSize int) {
	n, ok := clampToImage(r, img)
	if !ok || blockSize < 2 {
		return
	}
	w := int(n.Right - n.Left + 1)
	h := int(n.Bottom - n.Top + 1)

	downW := w / blockSize
	downH := h / blockSize
	if downW < 1 {
		downW = 1
	}
	if downH < 1 {
		downH = 1
	}

	region := capture.Crop(img, n)
	// Box filtering averages every source pixel a destination pixel covers,
	// then nearest-neighbor blows the blocks back up without smoothing.
	small := resize.Resize(uint(downW), uint(downH), region, resize.Box)

	dst := image.Rect(int(n.Left), int(n.Top), int(n.Right)+1, int(n.Bottom)+1)
	xdraw.NearestNeighbor.Scale(img, dst, small, small.Bounds(), xdraw.Src, nil)
}

// Mark draws a translucent red frame around the rectangle. The frame sits
// just outside the selection so the selected pixels stay untouched.
func Mark(img *image.RGBA, r geom.Rect, lineWidth int, alpha uint8) {
	n, ok := clampToImage(r, img)
	if !ok || lineWidth < 1 {
		return
	}

	outer := geom.Rect{
		Left:   n.Left - int32(lineWidth/2),
		Top:    n.Top - int32(lineWidth/2),
		Right:  n.Right + int32(lineWidth/2),
		Bottom: n.Bottom + int32(lineWidth/2),
	}
	inner := geom.Rect{
		Left:   n.Left + int32(lineWidth/2+1),
		Top:    n.Top + int32(lineWidth/2+1),
		Right:  n.Right - int32(lineWidth/2+1),
		Bottom: n.Bottom - int32(lineWidth/2+1),
	}
	b := img.Bounds()
	bounds := geom.Bounds{Width: int32(b.Dx()), Height: int32(b.Dy())}
	outer = bounds.ClampRect(outer)

	hasInner := inner.Left <= inner.Right && inner.Top <= inner.Bottom
	var saved *image.RGBA
	if hasInner {
		saved = capture.Crop(img, inner)
	}

	for y := outer.Top; y <= outer.Bottom; y++ {
		for x := outer.Left; x <= outer.Right; x++ {
			blendPixel(img, int(x), int(y), MarkColor, alpha)
		}
	}

	if hasInner {
		dst := image.Rect(int(inner.Left), int(inner.Top), int(inner.Right)+1, int(inner.Bottom)+1)
		xdraw.Draw(img, dst, saved, image.Point{}, xdraw.Src)
	}
}

func blendPixel(img *image.RGBA, x, y int, c color.RGBA, alpha uint8) {
	src := img.RGBAAt(x, y)
	a := uint32(alpha)
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((uint32(c.R)*a + uint32(src.R)*(255-a)) / 255),
		G: uint8((uint32(c.G)*a + uint32(src.G)*(255-a)) / 255),
		B: uint8((uint32(c.B)*a + uint32(src.B)*(255-a)) / 255),
		A: 255,
	})
}
