package column

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math/cmplx"
	"runtime"

	"github.com/mjibson/go-dsp/fft"
	"golang.org/x/sync/errgroup"

	"github.com/neurlang/otis/errs"
	"github.com/neurlang/otis/spectral"
)

// Option configures an [Engine] during construction.
type Option func(*Engine)

// WithWorkers bounds the number of columns processed at once. Values below 1
// fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithGain sets the magnitude of a full channel.
func WithGain(gain float64) Option {
	return func(e *Engine) {
		e.gain = gain
	}
}

// WithYReverse puts the bottom row of the image at the lowest frequency of
// every band. Without it the top row is the lowest.
func WithYReverse(reverse bool) Option {
	return func(e *Engine) {
		e.yReverse = reverse
	}
}

// WithNormalize makes AnalyzeAll stretch every band over the range of
// magnitudes found in all segments instead of reading them against the gain.
// Audio from elsewhere then still fills the channels.
func WithNormalize(normalize bool) Option {
	return func(e *Engine) {
		e.normalize = normalize
	}
}

// Engine converts between pixel columns and segments of a fixed length.
type Engine struct {
	length    int
	part      spectral.Partition
	gain      float64
	yReverse  bool
	normalize bool
	workers   int
}

// New creates an Engine for segments of length samples whose usable bins are
// split by part. part must cover exactly length/2 bins.
func New(length int, part spectral.Partition, opts ...Option) (*Engine, error) {
	if length < 2*spectral.NumBands {
		return nil, errs.Invalid("segment_length", length, fmt.Sprintf(">= %d", 2*spectral.NumBands))
	}
	if part.Usable() != length/2 {
		return nil, errs.Mismatch("usable_bins", part.Usable(), fmt.Sprintf("%d for segment length %d", length/2, length))
	}

	e := &Engine{
		length:   length,
		part:     part,
		gain:     1,
		yReverse: true,
		workers:  runtime.GOMAXPROCS(0),
	}
	for _, o := range opts {
		o(e)
	}
	if !(e.gain > 0) {
		return nil, errs.Invalid("gain", e.gain, "> 0")
	}
	return e, nil
}

// Length returns the segment length L.
func (e *Engine) Length() int {
	return e.length
}

// Capacity returns the largest number of rows a column may have.
func (e *Engine) Capacity() int {
	return e.part.Capacity()
}

// Partition returns the band layout of the engine.
func (e *Engine) Partition() spectral.Partition {
	return e.part
}

func (e *Engine) checkRows(rows int) error {
	if rows < 1 {
		return errs.Mismatch("rows", rows, ">= 1")
	}
	if rows > e.Capacity() {
		return errs.New(errs.ErrResolutionExceedsBandwidth, "rows", rows,
			fmt.Sprintf("<= %d bins per band for segment length %d", e.Capacity(), e.length))
	}
	return nil
}

// rank returns the frequency rank of row y; rank 0 is the lowest bin.
func (e *Engine) rank(y, rows int) int {
	if e.yReverse {
		return rows - 1 - y
	}
	return y
}

// Spectrum builds the full spectrum of col. Every pixel contributes one zero
// phase bin per band and the mirrored bin keeps the spectrum Hermitian, so
// its inverse transform is real. Unassigned bins stay zero.
func (e *Engine) Spectrum(col []spectral.Pixel) ([]complex128, error) {
	rows := len(col)
	if err := e.checkRows(rows); err != nil {
		return nil, err
	}

	spectrum := make([]complex128, e.length)
	for y, p := range col {
		mags := spectral.PixelToBands(p, e.gain)
		rank := e.rank(y, rows)
		for b := spectral.Low; b <= spectral.High; b++ {
			k := e.part.Bin(b, rank, rows)
			v := complex(mags[b], 0)
			spectrum[k] = v
			if mirror := e.length - k; mirror != k {
				spectrum[mirror] = cmplx.Conj(v)
			}
		}
	}
	return spectrum, nil
}

// Synthesize returns the segment of col.
func (e *Engine) Synthesize(col []spectral.Pixel) ([]float64, error) {
	spectrum, err := e.Spectrum(col)
	if err != nil {
		return nil, err
	}

	buf := fft.IFFT(spectrum)
	segment := make([]float64, e.length)
	for i := range segment {
		segment[i] = real(buf[i])
	}
	return segment, nil
}

// Magnitudes returns, for each of rows rows, the magnitudes of segment at
// the bins Synthesize would have written.
func (e *Engine) Magnitudes(segment []float64, rows int) ([]spectral.Magnitudes, error) {
	if len(segment) != e.length {
		return nil, errs.Mismatch("segment_length", len(segment), fmt.Sprint(e.length))
	}
	if err := e.checkRows(rows); err != nil {
		return nil, err
	}

	spectrum := fft.FFTReal(segment)
	mags := make([]spectral.Magnitudes, rows)
	for y := range mags {
		rank := e.rank(y, rows)
		for b := spectral.Low; b <= spectral.High; b++ {
			mags[y][b] = cmplx.Abs(spectrum[e.part.Bin(b, rank, rows)])
		}
	}
	return mags, nil
}

// Analyze recovers a column of rows pixels from segment.
func (e *Engine) Analyze(segment []float64, rows int) ([]spectral.Pixel, error) {
	mags, err := e.Magnitudes(segment, rows)
	if err != nil {
		return nil, err
	}
	return e.pixels(mags, e.gain), nil
}

func (e *Engine) pixels(mags []spectral.Magnitudes, gain float64) []spectral.Pixel {
	col := make([]spectral.Pixel, len(mags))
	for y, m := range mags {
		col[y] = spectral.BandsToPixel(m, gain)
	}
	return col
}

// SynthesizeAll returns one segment per column of img, in column order.
func (e *Engine) SynthesizeAll(ctx context.Context, img *image.NRGBA) ([][]float64, error) {
	width := img.Bounds().Dx()
	if width < 1 {
		return nil, errs.Mismatch("columns", width, ">= 1")
	}
	if err := e.checkRows(img.Bounds().Dy()); err != nil {
		return nil, err
	}

	segments := make([][]float64, width)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for x := range width {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			seg, err := e.Synthesize(Pixels(img, x))
			if err != nil {
				return fmt.Errorf("column %d: %w", x, err)
			}
			segments[x] = seg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return segments, nil
}

// AnalyzeAll builds an image with one column per segment and rows rows.
func (e *Engine) AnalyzeAll(ctx context.Context, segments [][]float64, rows int) (*image.NRGBA, error) {
	if len(segments) < 1 {
		return nil, errs.Mismatch("segments", len(segments), ">= 1")
	}
	if err := e.checkRows(rows); err != nil {
		return nil, err
	}

	cols := make([][]spectral.Magnitudes, len(segments))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for x, seg := range segments {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mags, err := e.Magnitudes(seg, rows)
			if err != nil {
				return fmt.Errorf("segment %d: %w", x, err)
			}
			cols[x] = mags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gain := e.gain
	if e.normalize {
		spectral.Stretch(cols)
		gain = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, len(segments), rows))
	for x, mags := range cols {
		SetPixels(img, x, e.pixels(mags, gain))
	}
	return img, nil
}

// Pixels returns column x of img, top to bottom. Alpha is ignored.
func Pixels(img *image.NRGBA, x int) []spectral.Pixel {
	b := img.Bounds()
	col := make([]spectral.Pixel, b.Dy())
	for y := range col {
		c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
		col[y] = spectral.Pixel{R: c.R, G: c.G, B: c.B}
	}
	return col
}

// SetPixels writes col into column x of img as opaque pixels.
func SetPixels(img *image.NRGBA, x int, col []spectral.Pixel) {
	b := img.Bounds()
	for y, p := range col {
		img.SetNRGBA(b.Min.X+x, b.Min.Y+y, color.NRGBA{R: p.R, G: p.G, B: p.B, A: 0xff})
	}
}
