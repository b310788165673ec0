package transform

import (
	"image"
	"image/color"
	"testing"

	"screen-snip/src/geom"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestPixelateSolidColorUnchanged(t *testing.T) {
	c := color.RGBA{R: 40, G: 80, B: 120, A: 255}
	img := solidImage(32, 32, c)
	Pixelate(img, geom.Rect{Left: 0, Top: 0, Right: 31, Bottom: 31}, PixelateFactor)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if got := img.RGBAAt(x, y); got != c {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, got, c)
			}
		}
	}
}

func TestPixelateBlocksAreUniform(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), A: 255})
		}
	}
	Pixelate(img, geom.Rect{Left: 0, Top: 0, Right: 15, Bottom: 15}, 8)
	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			first := img.RGBAAt(bx*8, by*8)
			for y := by * 8; y < by*8+8; y++ {
				for x := bx * 8; x < bx*8+8; x++ {
					if got := img.RGBAAt(x, y); got != first {
						t.Fatalf("block (%d,%d) not uniform: pixel (%d,%d) = %+v, block color %+v",
							bx, by, x, y, got, first)
					}
				}
			}
		}
	}
}

func TestPixelateLeavesOutsideUntouched(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	before := img.RGBAAt(0, 0)
	Pixelate(img, geom.Rect{Left: 8, Top: 8, Right: 23, Bottom: 23}, 8)
	if got := img.RGBAAt(0, 0); got != before {
		t.Errorf("pixel outside the rectangle changed: %+v -> %+v", before, got)
	}
	if got := img.RGBAAt(31, 31); got != (color.RGBA{R: 31, G: 31, A: 255}) {
		t.Errorf("far corner changed: %+v", got)
	}
}

func TestPixelateIgnoresInvalidRect(t *testing.T) {
	c := color.RGBA{R: 7, G: 7, B: 7, A: 255}
	img := solidImage(8, 8, c)
	Pixelate(img, geom.UnsetRect(), PixelateFactor)
	if got := img.RGBAAt(3, 3); got != c {
		t.Errorf("invalid rect should be a no-op, pixel = %+v", got)
	}
}

func TestMarkFramesSelection(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	img := solidImage(40, 40, white)
	r := geom.Rect{Left: 10, Top: 10, Right: 29, Bottom: 29}
	Mark(img, r, MarkWidth, MarkAlpha)

	// Interior pixels are restored after the fill.
	if got := img.RGBAAt(20, 20); got != white {
		t.Errorf("interior pixel = %+v, want untouched white", got)
	}
	// The band on the selection edge carries the translucent red.
	edge := img.RGBAAt(10, 10)
	if edge.R <= edge.G || edge.G != edge.B {
		t.Errorf("frame pixel = %+v, want red-tinted blend", edge)
	}
	// Pixels outside the outer frame are untouched.
	if got := img.RGBAAt(5, 5); got != white {
		t.Errorf("outside pixel = %+v, want untouched white", got)
	}
}

func TestMarkBlendIsTranslucent(t *testing.T) {
	black := color.RGBA{A: 255}
	img := solidImage(40, 40, black)
	Mark(img, geom.Rect{Left: 10, Top: 10, Right: 29, Bottom: 29}, MarkWidth, 128)
	edge := img.RGBAAt(10, 10)
	// 255 at half opacity over black lands near 128.
	if edge.R < 120 || edge.R > 135 || edge.G != 0 || edge.B != 0 {
		t.Errorf("frame pixel = %+v, want half-strength red", edge)
	}
}

func TestMarkOrientationIndependent(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	a := solidImage(40, 40, white)
	b := solidImage(40, 40, white)
	Mark(a, geom.Rect{Left: 10, Top: 10, Right: 29, Bottom: 29}, MarkWidth, MarkAlpha)
	Mark(b, geom.Rect{Left: 29, Top: 29, Right: 10, Bottom: 10}, MarkWidth, MarkAlpha)
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if a.RGBAAt(x, y) != b.RGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) differs between orientations", x, y)
			}
		}
	}
}
