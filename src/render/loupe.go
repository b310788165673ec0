package render

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"screen-snip/src/geom"
)

// drawLoupe magnifies the ZoomTile-square patch centered on the corner and
// paints it next to the corner, offset so it never covers the pixel being
// edited. At scale 1 the loupe adds nothing and is skipped.
func drawLoupe(dst *image.RGBA, src *image.RGBA, p geom.Point, zoom int32, sc Scheme) {
	if zoom <= 1 {
		return
	}
	size := int(zoom) * ZoomTile
	half := ZoomTile / 2

	srcRect := image.Rect(int(p.X)-half, int(p.Y)-half, int(p.X)+half, int(p.Y)+half)

	// Place the loupe below-right of the corner, flipping to keep it on
	// the bitmap.
	b := dst.Bounds()
	x := int(p.X) + 16
	y := int(p.Y) + 16
	if x+size > b.Max.X {
		x = int(p.X) - 16 - size
	}
	if y+size > b.Max.Y {
		y = int(p.Y) - 16 - size
	}
	if x < b.Min.X {
		x = b.Min.X
	}
	if y < b.Min.Y {
		y = b.Min.Y
	}
	dstRect := image.Rect(x, y, x+size, y+size)

	xdraw.NearestNeighbor.Scale(dst, dstRect, src, srcRect, xdraw.Src, nil)
	strokeRect(dst, dstRect.Inset(-1), sc.Accent)

	// Crosshair over the magnified center pixel.
	cx := x + size/2
	cy := y + size/2
	cell := int(zoom)
	strokeRect(dst, image.Rect(cx-cell/2, cy-cell/2, cx+cell/2+1, cy+cell/2+1), sc.Inverse)
}
