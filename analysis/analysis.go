package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/r9y9/gossp/stft"
	"github.com/x448/float16"

	"github.com/neurlang/otis/errs"
	"github.com/neurlang/otis/spectral"
)

// Analyzer represents the configuration of the spectral inspection.
type Analyzer struct {
	FrameShift  int
	FrameLen    int
	BandWeights [spectral.NumBands]float64
}

// NewAnalyzer creates a new Analyzer instance with default values.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		FrameShift:  256,
		FrameLen:    1024,
		BandWeights: spectral.EqualWeights,
	}
}

// Energy is the spectral energy of one frame per band.
type Energy [spectral.NumBands]float64

// Total returns the energy of all bands.
func (e Energy) Total() float64 {
	return e[spectral.Low] + e[spectral.Mid] + e[spectral.High]
}

// Dominant returns the band holding most of the energy.
func (e Energy) Dominant() spectral.Band {
	best := spectral.Low
	for b := spectral.Mid; b <= spectral.High; b++ {
		if e[b] > e[best] {
			best = b
		}
	}
	return best
}

func (a *Analyzer) validate() error {
	if a.FrameLen < 2*spectral.NumBands {
		return errs.Invalid("frame_len", a.FrameLen, fmt.Sprintf(">= %d", 2*spectral.NumBands))
	}
	if a.FrameShift < 1 || a.FrameShift > a.FrameLen {
		return errs.Invalid("frame_shift", a.FrameShift, fmt.Sprintf("[1, %d]", a.FrameLen))
	}
	return nil
}

// Magnitudes returns the magnitude spectrogram of buf, one row of
// FrameLen/2+1 bins per frame. Frames are Hanning windowed.
func (a *Analyzer) Magnitudes(buf []float64) ([][]float64, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	buf = pad(buf, a.FrameLen)
	spectrum := stft.New(a.FrameShift, a.FrameLen).STFT(buf)

	mags := make([][]float64, len(spectrum))
	for i, frame := range spectrum {
		mags[i] = make([]float64, a.FrameLen/2+1)
		for j := range mags[i] {
			mags[i][j] = cmplx.Abs(frame[j])
		}
	}
	return mags, nil
}

// BandEnergy returns the energy of every frame of buf per band. The DC bin
// belongs to no band.
func (a *Analyzer) BandEnergy(buf []float64) ([]Energy, error) {
	mags, err := a.Magnitudes(buf)
	if err != nil {
		return nil, err
	}
	part, err := spectral.NewPartition(a.FrameLen/2, a.BandWeights)
	if err != nil {
		return nil, err
	}

	energy := make([]Energy, len(mags))
	for i, frame := range mags {
		for b, r := range part.Bands {
			for k := r.Start; k < r.End; k++ {
				energy[i][b] += frame[k] * frame[k]
			}
		}
	}
	return energy, nil
}

// Share returns the fraction of the total energy each band holds over all
// frames.
func Share(energy []Energy) Energy {
	var sum Energy
	for _, e := range energy {
		for b := range sum {
			sum[b] += e[b]
		}
	}
	total := sum.Total()
	if total == 0 {
		return Energy{}
	}
	for b := range sum {
		sum[b] /= total
	}
	return sum
}

// Half packs mags row by row into IEEE 754 half precision bit patterns.
func Half(mags [][]float64) []uint16 {
	var out []uint16
	for _, frame := range mags {
		for _, v := range frame {
			out = append(out, float16.Fromfloat32(float32(v)).Bits())
		}
	}
	return out
}

// pad centers buf in zeros so that it holds at least one full frame.
func pad(buf []float64, frame int) []float64 {
	if len(buf) >= frame {
		return buf
	}
	out := make([]float64, frame)
	copy(out[(frame-len(buf))/2:], buf)
	return out
}
