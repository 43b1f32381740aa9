package codec

import (
	"context"
	"image"
	"image/color"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/mjibson/go-dsp/fft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/otis/blend"
	"github.com/neurlang/otis/errs"
	"github.com/neurlang/otis/spectral"
)

func randomImage(seed uint64, w, h int) *image.NRGBA {
	r := rand.New(rand.NewPCG(seed, seed+1))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(r.IntN(256))
		img.Pix[i+1] = uint8(r.IntN(256))
		img.Pix[i+2] = uint8(r.IntN(256))
		img.Pix[i+3] = 0xff
	}
	return img
}

func TestRoundTripWithoutFade(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		c    func(*Codec)
		w, h int
	}{
		{"shortest segment", func(c *Codec) {}, 20, 15},
		{"fixed segment", func(c *Codec) { c.SegmentLength = 512 }, 9, 85},
		{"odd segment", func(c *Codec) { c.SegmentLength = 301 }, 5, 50},
		{"column duration", func(c *Codec) { c.ColumnDuration = 10 * time.Millisecond }, 3, 70},
		{"weighted bands", func(c *Codec) { c.BandWeights = [spectral.NumBands]float64{1, 2, 4} }, 6, 12},
		{"top row low", func(c *Codec) { c.YReverse = false; c.Gain = 0.25 }, 8, 8},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCodec()
			c.Workers = 2
			tc.c(c)
			img := randomImage(uint64(i), tc.w, tc.h)

			enc, err := c.ToAudio(ctx, img)
			require.NoError(t, err)
			assert.Equal(t, tc.w, enc.Layout.Columns)
			assert.Equal(t, tc.h, enc.Layout.Rows)
			assert.Len(t, enc.Samples, enc.Layout.Samples())

			got, err := c.FromAudio(ctx, enc.Samples, enc.Layout)
			require.NoError(t, err)
			assert.Equal(t, img.Pix, got.Pix)
		})
	}
}

func TestBlackPixelIsSilence(t *testing.T) {
	ctx := context.Background()
	c := NewCodec()
	c.SegmentLength = 512

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{A: 0xff})

	enc, err := c.ToAudio(ctx, img)
	require.NoError(t, err)
	require.Len(t, enc.Samples, 512)
	for _, v := range enc.Samples {
		assert.InDelta(t, 0, v, 1e-12)
	}
	assert.Equal(t, 44100, enc.Layout.SampleRate)
	assert.Equal(t, 512, enc.Layout.Hop)

	got, err := c.FromAudio(ctx, enc.Samples, enc.Layout)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{A: 0xff}, got.NRGBAAt(0, 0))
}

func TestRedColumnsStayInLowBand(t *testing.T) {
	ctx := context.Background()
	c := NewCodec()
	c.SegmentLength = 512

	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	for x := range 4 {
		img.SetNRGBA(x, 0, color.NRGBA{R: 255, A: 0xff})
	}

	enc, err := c.ToAudio(ctx, img)
	require.NoError(t, err)
	windows, err := blend.Split(enc.Samples, 512, enc.Layout.Hop, 4)
	require.NoError(t, err)
	require.Len(t, windows, 4)

	part, err := spectral.NewPartition(256, spectral.EqualWeights)
	require.NoError(t, err)
	for i, w := range windows {
		spectrum := fft.FFTReal(w)
		var low, rest float64
		for k := 1; k <= 256; k++ {
			e := math.Pow(cmplx.Abs(spectrum[k]), 2)
			if part.Bands[spectral.Low].Contains(k) {
				low += e
			} else {
				rest += e
			}
		}
		assert.Greater(t, low, 0.5, "segment %d", i)
		assert.Less(t, rest, 1e-9, "segment %d", i)
	}
}

func TestCrossfadeLengthAndApproximation(t *testing.T) {
	ctx := context.Background()
	img := randomImage(42, 10, 16)

	for _, f := range []float64{0.1, 0.5, 1} {
		c := NewCodec()
		c.SegmentLength = 256
		c.Crossfade = f

		enc, err := c.ToAudio(ctx, img)
		require.NoError(t, err)
		hop, err := blend.Hop(256, f)
		require.NoError(t, err)
		assert.Equal(t, hop, enc.Layout.Hop)
		assert.Equal(t, 10, enc.Layout.Columns, "one segment per column")
		assert.Len(t, enc.Samples, hop*9+256)

		got, err := c.FromAudio(ctx, enc.Samples, enc.Layout)
		require.NoError(t, err)
		assert.Equal(t, img.Bounds(), got.Bounds())
		for i := 3; i < len(got.Pix); i += 4 {
			require.Equal(t, uint8(0xff), got.Pix[i])
		}
	}
}

func TestResolutionExceedsBandwidth(t *testing.T) {
	ctx := context.Background()
	c := NewCodec()
	c.SegmentLength = 64
	img := randomImage(7, 4, 20)

	_, err := c.ToAudio(ctx, img)
	require.ErrorIs(t, err, errs.ErrResolutionExceedsBandwidth)

	c.AutoFit = true
	enc, err := c.ToAudio(ctx, img)
	require.NoError(t, err)
	assert.Equal(t, 10, enc.Layout.Rows)
	assert.Equal(t, 2, enc.Layout.Columns)
}

func TestResizeBoundsColumns(t *testing.T) {
	ctx := context.Background()
	c := NewCodec()
	c.MaxDimension = 16

	enc, err := c.ToAudio(ctx, randomImage(1, 64, 32))
	require.NoError(t, err)
	assert.Equal(t, 16, enc.Layout.Columns)
	assert.Equal(t, 8, enc.Layout.Rows)
	assert.Equal(t, image.Rect(0, 0, 16, 8), enc.Image.Bounds())

	c.MaxDimension = 0
	c.ResizeFactor = 0.25
	enc, err = c.ToAudio(ctx, randomImage(1, 64, 32))
	require.NoError(t, err)
	assert.Equal(t, 16, enc.Layout.Columns)
}

func TestValidate(t *testing.T) {
	cases := []func(*Codec){
		func(c *Codec) { c.Crossfade = 1.5 },
		func(c *Codec) { c.Crossfade = -0.1 },
		func(c *Codec) { c.MaxDimension = -1 },
		func(c *Codec) { c.ResizeFactor = -2 },
		func(c *Codec) { c.SampleRate = 0 },
		func(c *Codec) { c.Gain = 0 },
		func(c *Codec) { c.BandWeights[1] = 0 },
		func(c *Codec) { c.SegmentLength = MaxSegmentLength + 2 },
	}
	for i, mutate := range cases {
		c := NewCodec()
		mutate(c)
		err := c.Validate()
		assert.ErrorIs(t, err, errs.ErrInvalidConfiguration, "case %d", i)

		_, err = c.ToAudio(context.Background(), randomImage(1, 2, 2))
		assert.ErrorIs(t, err, errs.ErrInvalidConfiguration, "case %d", i)
	}
	assert.NoError(t, NewCodec().Validate())
}

func TestDecodeWithoutLayout(t *testing.T) {
	ctx := context.Background()
	c := NewCodec()
	img := randomImage(9, 12, 10)

	enc, err := c.ToAudio(ctx, img)
	require.NoError(t, err)

	l := c.Layout(12)
	l.Rows = 10
	got, err := c.FromAudio(ctx, enc.Samples, l)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, got.Pix)

	l.Rows = 0
	got, err = c.FromAudio(ctx, enc.Samples, l)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 10), got.Bounds(), "rows default to the band capacity")
}

func TestDecodeNormalize(t *testing.T) {
	ctx := context.Background()
	loud := NewCodec()
	loud.Gain = 8
	img := randomImage(13, 6, 8)
	enc, err := loud.ToAudio(ctx, img)
	require.NoError(t, err)

	c := NewCodec()
	c.Normalize = true
	l := c.Layout(6)
	l.Rows = 8
	got, err := c.FromAudio(ctx, enc.Samples, l)
	require.NoError(t, err)

	for ch := range 3 {
		lo, hi := 255, 0
		for i := ch; i < len(img.Pix); i += 4 {
			lo, hi = min(lo, int(img.Pix[i])), max(hi, int(img.Pix[i]))
		}
		for i := ch; i < len(img.Pix); i += 4 {
			want := float64(int(img.Pix[i])-lo) / float64(hi-lo) * 255
			assert.InDelta(t, want, float64(got.Pix[i]), 1, "channel %d byte %d", ch, i)
		}
	}
}

func TestDecodeDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	c := NewCodec()
	c.SegmentLength = 128
	enc, err := c.ToAudio(ctx, randomImage(3, 5, 5))
	require.NoError(t, err)

	_, err = c.FromAudio(ctx, enc.Samples[:len(enc.Samples)-1], enc.Layout)
	assert.ErrorIs(t, err, errs.ErrDimensionMismatch)

	l := *enc.Layout
	l.Columns = 6
	_, err = c.FromAudio(ctx, enc.Samples, &l)
	assert.ErrorIs(t, err, errs.ErrDimensionMismatch)

	l = *enc.Layout
	l.Columns = 0
	got, err := c.FromAudio(ctx, enc.Samples, &l)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Bounds().Dx(), "columns follow from the sample count")

	l = *enc.Layout
	l.Rows = 100
	_, err = c.FromAudio(ctx, enc.Samples, &l)
	assert.ErrorIs(t, err, errs.ErrResolutionExceedsBandwidth)
}

func TestMinSegmentLength(t *testing.T) {
	length, err := MinSegmentLength(15, spectral.EqualWeights)
	require.NoError(t, err)
	assert.Equal(t, 90, length)

	for rows := 1; rows < 50; rows++ {
		w := [spectral.NumBands]float64{1, 3, 2}
		length, err := MinSegmentLength(rows, w)
		require.NoError(t, err)
		part, err := spectral.NewPartition(length/2, w)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, part.Capacity(), rows)
		assert.Zero(t, length%2)
	}

	_, err = MinSegmentLength(0, spectral.EqualWeights)
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}

// shortestLength searches every even length from the smallest possible one.
func shortestLength(rows int, w [spectral.NumBands]float64) int {
	for length := 2 * spectral.NumBands * rows; ; length += 2 {
		part, err := spectral.NewPartition(length/2, w)
		if err == nil && part.Capacity() >= rows {
			return length
		}
	}
}

func TestMinSegmentLengthSkewedWeights(t *testing.T) {
	weights := [][spectral.NumBands]float64{
		{1, 1, 1},
		{1, 3, 2},
		{1, 10, 10},
		{7, 0.5, 3},
		{1, 1, 100},
	}
	for _, w := range weights {
		for _, rows := range []int{1, 2, 5, 17, 40} {
			length, err := MinSegmentLength(rows, w)
			require.NoError(t, err)
			assert.Equal(t, shortestLength(rows, w), length, "weights %v rows %d", w, rows)
		}
	}

	_, err := MinSegmentLength(4, [spectral.NumBands]float64{1e-7, 1, 1})
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	c := NewCodec()
	c.BandWeights = [spectral.NumBands]float64{1e-7, 1, 1}
	_, err = c.ToAudio(context.Background(), randomImage(3, 2, 4))
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}
