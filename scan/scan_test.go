package scan

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/otis/codec"
	"github.com/neurlang/otis/errs"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 0xff})
		}
	}
	return img
}

func TestFrameMarksColumn(t *testing.T) {
	src := checker(5, 3)
	frame := Frame(src, 2)

	for y := range 3 {
		assert.Equal(t, Bar, frame.NRGBAAt(2, y))
		assert.Equal(t, src.NRGBAAt(1, y), frame.NRGBAAt(1, y))
		assert.Equal(t, src.NRGBAAt(3, y), frame.NRGBAAt(3, y))
	}
	assert.Equal(t, color.NRGBA{R: 2, A: 0xff}, src.NRGBAAt(2, 0), "source left untouched")
}

func TestFramesInOrder(t *testing.T) {
	var seen []int
	err := Frames(checker(4, 2), func(x int, frame *image.NRGBA) error {
		assert.Equal(t, Bar, frame.NRGBAAt(x, 1))
		seen = append(seen, x)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, seen)
}

func TestWriteFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	paths, err := WriteFrames(context.Background(), dir, checker(6, 4))
	require.NoError(t, err)
	require.Len(t, paths, 6)

	for x, path := range paths {
		assert.Equal(t, filepath.Join(dir, Name(x)), path)
		f, err := os.Open(path)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)

		r, g, b, _ := img.At(x, 0).RGBA()
		assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
	}
}

func TestFPS(t *testing.T) {
	fps, err := FPS(&codec.Layout{SampleRate: 44100, SegmentLength: 4410, Hop: 2205})
	require.NoError(t, err)
	assert.InDelta(t, 20, fps, 1e-9)

	_, err = FPS(&codec.Layout{SampleRate: 44100})
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}
