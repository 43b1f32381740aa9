package blend

import (
	"fmt"
	"math"

	"github.com/neurlang/otis/errs"
)

// Hop returns the distance between the starts of consecutive segments of
// length length for the fade fraction f: max(1, round(length*(1-f))).
func Hop(length int, f float64) (int, error) {
	if length < 1 {
		return 0, errs.Invalid("segment_length", length, ">= 1")
	}
	if err := CheckFraction(f); err != nil {
		return 0, err
	}
	return max(1, int(math.Round(float64(length)*(1-f)))), nil
}

// CheckFraction validates a fade fraction.
func CheckFraction(f float64) error {
	if math.IsNaN(f) || f < 0 || f > 1 {
		return errs.Invalid("crossfade", f, "[0, 1]")
	}
	return nil
}

// Ramp returns a raised-cosine fade-in of n samples. The fade-out is the
// same ramp reversed, and the two sum to 1 at every overlapping sample.
func Ramp(n int) []float64 {
	ramp := make([]float64, n)
	for i := range ramp {
		s := math.Sin(math.Pi * float64(i+1) / float64(2*(n+1)))
		ramp[i] = s * s
	}
	return ramp
}

// Length returns the number of samples Blend produces for width segments of
// length length at hop hop.
func Length(width, length, hop int) int {
	return hop*(width-1) + length
}

// Blend overlap-adds segments at the hop implied by f. Every segment must have
// the same length.
func Blend(segments [][]float64, f float64) ([]float64, error) {
	if len(segments) < 1 {
		return nil, errs.Mismatch("segments", 0, ">= 1")
	}
	length := len(segments[0])
	for i, seg := range segments {
		if len(seg) != length {
			return nil, errs.Mismatch(fmt.Sprintf("segments[%d]", i), len(seg), fmt.Sprint(length))
		}
	}
	hop, err := Hop(length, f)
	if err != nil {
		return nil, err
	}

	fade := length - hop
	ramp := Ramp(fade)
	out := make([]float64, Length(len(segments), length, hop))
	for i, seg := range segments {
		offset := i * hop
		for j, v := range seg {
			if j < fade {
				v *= ramp[j]
			}
			if tail := length - 1 - j; tail < fade {
				v *= ramp[tail]
			}
			out[offset+j] += v
		}
	}
	return out, nil
}

// Split cuts width windows of length length at stride hop out of samples.
// The windows are copies. samples must be exactly as long as Blend would have
// made it.
func Split(samples []float64, length, hop, width int) ([][]float64, error) {
	if length < 1 {
		return nil, errs.Invalid("segment_length", length, ">= 1")
	}
	if hop < 1 || hop > length {
		return nil, errs.Invalid("hop", hop, fmt.Sprintf("[1, %d]", length))
	}
	if width < 1 {
		return nil, errs.Mismatch("columns", width, ">= 1")
	}
	if want := Length(width, length, hop); len(samples) != want {
		return nil, errs.Mismatch("samples", len(samples),
			fmt.Sprintf("%d for %d segments of %d samples at hop %d", want, width, length, hop))
	}

	windows := make([][]float64, width)
	for i := range windows {
		windows[i] = append([]float64(nil), samples[i*hop:i*hop+length]...)
	}
	return windows, nil
}

// Columns returns how many segments of length length at hop hop make up n
// samples.
func Columns(n, length, hop int) (int, error) {
	if length < 1 || hop < 1 {
		return 0, errs.Invalid("hop", hop, ">= 1")
	}
	if n < length || (n-length)%hop != 0 {
		return 0, errs.Mismatch("samples", n,
			fmt.Sprintf("%d + k*%d samples", length, hop))
	}
	return (n-length)/hop + 1, nil
}

// Even splits samples into width back to back windows of len(samples)/width
// samples, dropping the remainder. It is the fallback for audio that comes
// without a layout, and assumes no crossfade.
func Even(samples []float64, width int) ([][]float64, error) {
	if width < 1 {
		return nil, errs.Mismatch("columns", width, ">= 1")
	}
	length := len(samples) / width
	if length < 2 {
		return nil, errs.Mismatch("samples", len(samples), fmt.Sprintf(">= %d for %d columns", 2*width, width))
	}
	return Split(samples[:length*width], length, length, width)
}
