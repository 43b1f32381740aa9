package codec

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/neurlang/otis/blend"
	"github.com/neurlang/otis/column"
	"github.com/neurlang/otis/errs"
	"github.com/neurlang/otis/resize"
	"github.com/neurlang/otis/spectral"
)

// Codec represents the configuration of the image <-> audio transform.
type Codec struct {
	SampleRate int

	// SegmentLength is the number of samples per column. When zero it is
	// derived from ColumnDuration, and when that is zero too, it is the
	// shortest even length whose bands fit the image height.
	SegmentLength  int
	ColumnDuration time.Duration

	// MaxDimension bounds both sides of the image, 0 disables it.
	MaxDimension int
	// ResizeFactor scales the image before MaxDimension applies, 0 disables it.
	ResizeFactor float64
	// AutoFit shrinks images too tall for the segment length instead of
	// failing with ErrResolutionExceedsBandwidth.
	AutoFit bool

	// Crossfade is the fraction of a segment that overlaps its neighbors.
	Crossfade   float64
	BandWeights [spectral.NumBands]float64
	Gain        float64
	YReverse    bool

	// Normalize stretches each channel of a decoded image over the range of
	// its band's magnitudes instead of reading them against Gain. It suits
	// audio that was not encoded by a Codec.
	Normalize bool

	Workers int
	Logger  *slog.Logger
}

// NewCodec creates a new Codec instance with default values.
func NewCodec() *Codec {
	return &Codec{
		SampleRate:  44100,
		BandWeights: spectral.EqualWeights,
		Gain:        1,
		YReverse:    true,
		Workers:     runtime.GOMAXPROCS(0),
	}
}

// Encoded is the result of [Codec.ToAudio].
type Encoded struct {
	Samples []float64
	Layout  *Layout
	// Image is the resized image the samples were made from.
	Image *image.NRGBA
}

// Validate checks the configuration and returns every problem found.
func (c *Codec) Validate() error {
	var problems []error
	if c.SampleRate <= 0 {
		problems = append(problems, errs.Invalid("sample_rate", c.SampleRate, "> 0"))
	}
	if c.SegmentLength < 0 || c.SegmentLength > MaxSegmentLength {
		problems = append(problems, errs.Invalid("segment_length", c.SegmentLength,
			fmt.Sprintf("in [0, %d]", MaxSegmentLength)))
	}
	if c.ColumnDuration < 0 {
		problems = append(problems, errs.Invalid("column_duration", c.ColumnDuration, ">= 0"))
	}
	if c.MaxDimension < 0 {
		problems = append(problems, errs.Invalid("max_dimension", c.MaxDimension, ">= 1, or 0 to disable"))
	}
	if c.ResizeFactor < 0 || math.IsNaN(c.ResizeFactor) || math.IsInf(c.ResizeFactor, 0) {
		problems = append(problems, errs.Invalid("resize_factor", c.ResizeFactor, "> 0, or 0 to disable"))
	}
	if err := blend.CheckFraction(c.Crossfade); err != nil {
		problems = append(problems, err)
	}
	if !(c.Gain > 0) || math.IsInf(c.Gain, 0) {
		problems = append(problems, errs.Invalid("gain", c.Gain, "a finite value > 0"))
	}
	for i, w := range c.BandWeights {
		if !(w > 0) || math.IsInf(w, 0) {
			problems = append(problems, errs.Invalid(fmt.Sprintf("band_weights[%d]", i), w, "a finite value > 0"))
		}
	}
	return errors.Join(problems...)
}

func (c *Codec) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// MaxSegmentLength bounds the samples per column, about 95s at 44.1kHz.
const MaxSegmentLength = 1 << 22

// MinSegmentLength returns the shortest even segment length whose narrowest
// band holds rows bins.
func MinSegmentLength(rows int, weights [spectral.NumBands]float64) (int, error) {
	if rows < 1 {
		return 0, errs.Invalid("rows", rows, ">= 1")
	}
	sum, least := 0.0, math.Inf(1)
	for i, w := range weights {
		if !(w > 0) || math.IsInf(w, 0) {
			return 0, errs.Invalid(fmt.Sprintf("band_weights[%d]", i), w, "a finite value > 0")
		}
		sum += w
		least = min(least, w)
	}
	tooLong := errs.Invalid("band_weights", weights,
		fmt.Sprintf("a segment length <= %d for %d rows", MaxSegmentLength, rows))

	// Rounding widens a band by at most one bin over its share, so no usable
	// count below (rows-1)*sum/least can fit.
	bound := math.Floor(float64(rows-1) * sum / least)
	if 2*bound > MaxSegmentLength {
		return 0, tooLong
	}
	usable := max(spectral.NumBands*rows, int(bound)-1)
	for ; 2*usable <= MaxSegmentLength; usable++ {
		part, err := spectral.NewPartition(usable, weights)
		if err == nil && part.Capacity() >= rows {
			return 2 * usable, nil
		}
	}
	return 0, tooLong
}

func (c *Codec) segmentLength(rows int) (int, error) {
	switch {
	case c.SegmentLength > 0:
		return c.SegmentLength, nil
	case c.ColumnDuration > 0:
		length := int(math.Round(c.ColumnDuration.Seconds() * float64(c.SampleRate)))
		if length > MaxSegmentLength {
			return 0, errs.Invalid("column_duration", c.ColumnDuration,
				fmt.Sprintf("<= %d samples at %d Hz", MaxSegmentLength, c.SampleRate))
		}
		return length, nil
	}
	return MinSegmentLength(rows, c.BandWeights)
}

func newEngine(length int, weights [spectral.NumBands]float64, gain float64, yReverse bool, workers int, opts ...column.Option) (*column.Engine, error) {
	part, err := spectral.NewPartition(length/2, weights)
	if err != nil {
		return nil, err
	}
	return column.New(length, part, append([]column.Option{
		column.WithGain(gain),
		column.WithYReverse(yReverse),
		column.WithWorkers(workers),
	}, opts...)...)
}

// Resize applies ResizeFactor and MaxDimension to img.
func (c *Codec) Resize(img image.Image) (*image.NRGBA, error) {
	var (
		out *image.NRGBA
		err error
	)
	if c.ResizeFactor > 0 {
		if out, err = resize.Scale(img, c.ResizeFactor); err != nil {
			return nil, err
		}
		img = out
	}
	if c.MaxDimension > 0 {
		return resize.Fit(img, c.MaxDimension)
	}
	if out != nil {
		return out, nil
	}
	return resize.Copy(img), nil
}

// ToAudio encodes img into samples. Each column of the resized image becomes
// one segment.
func (c *Codec) ToAudio(ctx context.Context, img image.Image) (*Encoded, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	src, err := c.Resize(img)
	if err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}

	length, err := c.segmentLength(src.Bounds().Dy())
	if err != nil {
		return nil, err
	}
	engine, err := newEngine(length, c.BandWeights, c.Gain, c.YReverse, c.Workers)
	if err != nil {
		return nil, err
	}
	if c.AutoFit && src.Bounds().Dy() > engine.Capacity() {
		c.logger().Debug("shrinking image to band capacity",
			"rows", src.Bounds().Dy(), "capacity", engine.Capacity())
		if src, err = resize.FitRows(src, engine.Capacity()); err != nil {
			return nil, err
		}
	}

	hop, err := blend.Hop(length, c.Crossfade)
	if err != nil {
		return nil, err
	}
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	c.logger().Debug("encoding image",
		"columns", width, "rows", height, "segment_length", length, "hop", hop)

	segments, err := engine.SynthesizeAll(ctx, src)
	if err != nil {
		return nil, err
	}
	samples, err := blend.Blend(segments, c.Crossfade)
	if err != nil {
		return nil, err
	}

	layout := &Layout{
		SampleRate:    c.SampleRate,
		SegmentLength: length,
		Hop:           hop,
		Columns:       width,
		Rows:          height,
		Crossfade:     c.Crossfade,
		BandWeights:   c.BandWeights,
		Gain:          c.Gain,
		YReverse:      c.YReverse,
	}
	c.logger().Debug("encoded image",
		"samples", len(samples), "seconds", float64(len(samples))/float64(c.SampleRate))
	return &Encoded{Samples: samples, Layout: layout, Image: src}, nil
}

// Layout returns the layout used to decode audio that comes without a
// sidecar: columns back to back segments, everything else from c.
func (c *Codec) Layout(columns int) *Layout {
	return &Layout{
		SampleRate:    c.SampleRate,
		SegmentLength: c.SegmentLength,
		Columns:       columns,
		Crossfade:     c.Crossfade,
		BandWeights:   c.BandWeights,
		Gain:          c.Gain,
		YReverse:      c.YReverse,
	}
}

// FromAudio decodes samples laid out as l into an image. A zero
// l.SegmentLength splits the samples evenly into l.Columns segments, a zero
// l.Rows decodes as many rows as the bands hold.
func (c *Codec) FromAudio(ctx context.Context, samples []float64, l *Layout) (*image.NRGBA, error) {
	if l.SegmentLength < 0 || l.Hop < 0 || l.Columns < 0 || l.Rows < 0 {
		return nil, errs.Mismatch("layout", *l, "non-negative dimensions")
	}
	if err := blend.CheckFraction(l.Crossfade); err != nil {
		return nil, err
	}
	gain := l.Gain
	if gain == 0 {
		gain = 1
	}
	weights := l.BandWeights
	if weights == ([spectral.NumBands]float64{}) {
		weights = spectral.EqualWeights
	}

	r, err := l.Resolve(len(samples))
	if err != nil {
		return nil, err
	}
	var windows [][]float64
	if l.SegmentLength == 0 {
		windows, err = blend.Even(samples, r.Columns)
	} else {
		windows, err = blend.Split(samples, r.SegmentLength, r.Hop, r.Columns)
	}
	if err != nil {
		return nil, err
	}
	length, hop := r.SegmentLength, r.Hop

	engine, err := newEngine(length, weights, gain, l.YReverse, c.Workers, column.WithNormalize(c.Normalize))
	if err != nil {
		return nil, err
	}
	rows := l.Rows
	if rows == 0 {
		rows = engine.Capacity()
	}

	if hop < length {
		c.logger().Warn("segments overlap, decoded image is approximate",
			"segment_length", length, "hop", hop)
	}
	c.logger().Debug("decoding audio",
		"samples", len(samples), "columns", len(windows), "rows", rows,
		"segment_length", length, "normalize", c.Normalize)

	return engine.AnalyzeAll(ctx, windows, rows)
}
