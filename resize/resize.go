package resize

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/neurlang/otis/errs"
)

// Fit scales img down so that neither side exceeds maxDim. Images already
// within bounds are copied unchanged.
func Fit(img image.Image, maxDim int) (*image.NRGBA, error) {
	if maxDim < 1 {
		return nil, errs.Invalid("max_dimension", maxDim, ">= 1")
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= maxDim && height <= maxDim {
		return Copy(img), nil
	}

	ratio := float64(maxDim) / float64(max(width, height))
	w := int(math.Round(float64(width) * ratio))
	h := int(math.Round(float64(height) * ratio))
	if w < 1 || h < 1 {
		return nil, errs.Invalid("max_dimension", maxDim,
			fmt.Sprintf("a bound keeping both sides of a %dx%d image >= 1", width, height))
	}
	return To(img, w, h), nil
}

// Scale multiplies both sides of img by factor, truncating to whole pixels.
func Scale(img image.Image, factor float64) (*image.NRGBA, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return nil, errs.Invalid("resize_factor", factor, "a finite value > 0")
	}

	b := img.Bounds()
	w := int(factor * float64(b.Dx()))
	h := int(factor * float64(b.Dy()))
	if w < 1 || h < 1 {
		return nil, errs.Invalid("resize_factor", factor,
			fmt.Sprintf("a factor keeping both sides of a %dx%d image >= 1", b.Dx(), b.Dy()))
	}
	return To(img, w, h), nil
}

// FitRows scales img down so that its height is at most rows, keeping the
// width at least one pixel.
func FitRows(img image.Image, rows int) (*image.NRGBA, error) {
	if rows < 1 {
		return nil, errs.Invalid("rows", rows, ">= 1")
	}

	b := img.Bounds()
	if b.Dy() <= rows {
		return Copy(img), nil
	}
	w := max(1, int(math.Round(float64(b.Dx())*float64(rows)/float64(b.Dy()))))
	return To(img, w, rows), nil
}

// To scales img to exactly width x height.
func To(img image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Copy returns img as a fresh NRGBA image anchored at the origin.
func Copy(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
