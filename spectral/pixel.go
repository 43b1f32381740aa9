package spectral

import "math"

// MaxChannel is the largest channel value of a pixel.
const MaxChannel = 255

// Pixel is one RGB pixel.
type Pixel struct {
	R, G, B uint8
}

// Magnitudes holds the magnitude of one pixel in each band.
type Magnitudes [NumBands]float64

// PixelToBands normalizes each channel to a magnitude for its band:
// R goes to Low, G to Mid and B to High. A full channel maps to gain.
func PixelToBands(p Pixel, gain float64) Magnitudes {
	return Magnitudes{
		Low:  float64(p.R) / MaxChannel * gain,
		Mid:  float64(p.G) / MaxChannel * gain,
		High: float64(p.B) / MaxChannel * gain,
	}
}

// BandsToPixel is the inverse of PixelToBands. Magnitudes outside the
// expected range are clamped, never rejected.
func BandsToPixel(m Magnitudes, gain float64) Pixel {
	return Pixel{
		R: toChannel(m[Low], gain),
		G: toChannel(m[Mid], gain),
		B: toChannel(m[High], gain),
	}
}

func toChannel(v, gain float64) uint8 {
	v = math.Round(v / gain * MaxChannel)
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= MaxChannel:
		return MaxChannel
	}
	return uint8(v)
}

// Stretch rescales every band of cols in place so that the smallest
// magnitude of the band becomes 0 and the largest 1. A band whose spread is
// within rounding noise of its largest value becomes 0.
func Stretch(cols [][]Magnitudes) {
	for b := Low; b <= High; b++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, col := range cols {
			for _, m := range col {
				if math.IsNaN(m[b]) {
					continue
				}
				lo, hi = min(lo, m[b]), max(hi, m[b])
			}
		}
		span := hi - lo
		flat := !(span > 1e-9*math.Abs(hi))
		for _, col := range cols {
			for i := range col {
				if !flat {
					col[i][b] = (col[i][b] - lo) / span
				} else {
					col[i][b] = 0
				}
			}
		}
	}
}
