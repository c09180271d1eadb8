package icon

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Size is the edge length of the composited badge canvas.
const Size = 1024

const (
	ringWidth    = 32
	dividerWidth = 16
)

// Compose builds the badge image for the given underlying token images.
// One image fills the canvas with no mask; two images are split down the
// middle inside a circular badge with a ring and divider in the paint
// color; three images use a top-half plus two bottom tiles layout (a grid
// approximation of a radial split, kept deliberately simple). Any other
// count is unsupported.
func Compose(images []image.Image, paint Paint) (*image.NRGBA, error) {
	if paint == nil {
		paint = White
	}

	switch len(images) {
	case 1:
		return cover(images[0], Size, Size), nil
	case 2:
		return composeTwo(images[0], images[1], paint), nil
	case 3:
		return composeThree(images[0], images[1], images[2], paint), nil
	default:
		return nil, fmt.Errorf("unsupported image count %d", len(images))
	}
}

func cover(img image.Image, w, h int) *image.NRGBA {
	return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
}

func composeTwo(a, b image.Image, paint Paint) *image.NRGBA {
	canvas := imaging.New(Size, Size, color.Transparent)

	left := imaging.Crop(cover(a, Size, Size), image.Rect(0, 0, Size/2, Size))
	right := imaging.Crop(cover(b, Size, Size), image.Rect(Size/2, 0, Size, Size))
	canvas = imaging.Paste(canvas, left, image.Pt(0, 0))
	canvas = imaging.Paste(canvas, right, image.Pt(Size/2, 0))

	drawDivider(canvas, paint)
	applyCircle(canvas, paint)
	return canvas
}

func composeThree(a, b, c image.Image, paint Paint) *image.NRGBA {
	canvas := imaging.New(Size, Size, color.Transparent)

	top := imaging.Crop(cover(a, Size, Size), image.Rect(0, 0, Size, Size/2))
	canvas = imaging.Paste(canvas, top, image.Pt(0, 0))
	canvas = imaging.Paste(canvas, cover(b, Size/2, Size/2), image.Pt(0, Size/2))
	canvas = imaging.Paste(canvas, cover(c, Size/2, Size/2), image.Pt(Size/2, Size/2))

	applyCircle(canvas, paint)
	return canvas
}

// drawDivider strokes the vertical center divider over the full height;
// the later circular mask clips it to the badge.
func drawDivider(canvas *image.NRGBA, paint Paint) {
	from := Size/2 - dividerWidth/2
	to := Size/2 + dividerWidth/2
	for y := 0; y < Size; y++ {
		for x := from; x < to; x++ {
			canvas.SetNRGBA(x, y, paint.colorAt(x, y, Size))
		}
	}
}

// applyCircle masks the canvas to a centered circle and strokes the outer
// ring in the paint color.
func applyCircle(canvas *image.NRGBA, paint Paint) {
	center := float64(Size) / 2
	radius := center
	inner := radius - ringWidth

	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			d := math.Hypot(float64(x)+0.5-center, float64(y)+0.5-center)
			switch {
			case d > radius:
				canvas.SetNRGBA(x, y, color.NRGBA{})
			case d > inner:
				canvas.SetNRGBA(x, y, paint.colorAt(x, y, Size))
			}
		}
	}
}
