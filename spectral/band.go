package spectral

import (
	"fmt"
	"math"

	"github.com/neurlang/otis/errs"
)

// Band is one of the three frequency sub-ranges.
type Band int

const (
	Low Band = iota
	Mid
	High
)

// NumBands is the number of bands, one per color channel.
const NumBands = 3

func (b Band) String() string {
	switch b {
	case Low:
		return "low"
	case Mid:
		return "mid"
	case High:
		return "high"
	}
	return fmt.Sprintf("band(%d)", int(b))
}

// Range is a half-open interval [Start, End) of absolute bin indices.
type Range struct {
	Start int
	End   int
}

// Width returns the number of bins in r.
func (r Range) Width() int {
	return r.End - r.Start
}

// Contains reports whether bin k falls inside r.
func (r Range) Contains(k int) bool {
	return k >= r.Start && k < r.End
}

// EqualWeights splits the spectrum into bands of equal width.
var EqualWeights = [NumBands]float64{1, 1, 1}

// Partition assigns every usable bin to exactly one band.
type Partition struct {
	Bands [NumBands]Range
}

// NewPartition splits the usable bins [1, usable] by weights. Band boundaries
// are rounded to the nearest bin; High absorbs whatever is left so the
// partition never has a gap.
func NewPartition(usable int, weights [NumBands]float64) (Partition, error) {
	var p Partition

	var sum float64
	for i, w := range weights {
		if !(w > 0) || math.IsInf(w, 0) {
			return p, errs.Invalid(fmt.Sprintf("band_weights[%d]", i), w, "a finite value > 0")
		}
		sum += w
	}
	if usable < NumBands {
		return p, errs.Invalid("usable_bins", usable, fmt.Sprintf(">= %d", NumBands))
	}

	b1 := int(math.Round(float64(usable) * weights[0] / sum))
	b2 := int(math.Round(float64(usable) * (weights[0] + weights[1]) / sum))

	p.Bands[Low] = Range{Start: 1, End: 1 + b1}
	p.Bands[Mid] = Range{Start: 1 + b1, End: 1 + b2}
	p.Bands[High] = Range{Start: 1 + b2, End: 1 + usable}

	for b, r := range p.Bands {
		if r.Width() < 1 {
			return p, errs.Invalid("band_weights", weights,
				fmt.Sprintf("weights leaving the %v band at least one of %d bins", Band(b), usable))
		}
	}
	return p, nil
}

// Usable returns the number of bins covered by p.
func (p Partition) Usable() int {
	return p.Bands[High].End - p.Bands[Low].Start
}

// Capacity returns the width of the narrowest band, the largest number of
// rows a column may have.
func (p Partition) Capacity() int {
	c := p.Bands[Low].Width()
	for _, r := range p.Bands[1:] {
		c = min(c, r.Width())
	}
	return c
}

// BandOf returns the band bin k belongs to, or false if k is outside the
// usable spectrum.
func (p Partition) BandOf(k int) (Band, bool) {
	for b, r := range p.Bands {
		if r.Contains(k) {
			return Band(b), true
		}
	}
	return 0, false
}

// Bin returns the absolute bin of the row with frequency rank rank (0 is the
// lowest frequency) in band b, for a column of rows rows. Rows are spread
// evenly across the band; distinct ranks get distinct bins while
// rows <= b's width.
func (p Partition) Bin(b Band, rank, rows int) int {
	r := p.Bands[b]
	return r.Start + rank*r.Width()/rows
}
