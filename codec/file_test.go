package codec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/otis/errs"
	"github.com/neurlang/otis/imgio"
)

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestEncodeDecodeFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := randomImage(11, 24, 16)
	imagePath := filepath.Join(dir, "in.png")
	audioPath := filepath.Join(dir, "in.wav")
	outPath := filepath.Join(dir, "out.png")
	require.NoError(t, imgio.Save(imagePath, src))

	c := NewCodec()
	c.SegmentLength = 256
	enc, err := c.Encode(ctx, imagePath, audioPath)
	require.NoError(t, err)
	assert.FileExists(t, audioPath)
	assert.FileExists(t, filepath.Join(dir, "in.yaml"))

	img, layout, err := c.Decode(ctx, audioPath, outPath, 0)
	require.NoError(t, err)
	assert.Equal(t, enc.Layout, layout)
	assert.FileExists(t, outPath)
	require.Equal(t, src.Bounds(), img.Bounds())
	for i := range src.Pix {
		// 16-bit samples leave at most one step of error per channel
		assert.LessOrEqual(t, absDiff(src.Pix[i], img.Pix[i]), 1, "byte %d", i)
	}

	_, _, err = c.Decode(ctx, audioPath, outPath, 25)
	assert.ErrorIs(t, err, errs.ErrDimensionMismatch)
}

func TestDecodeWithoutSidecar(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "in.png")
	audioPath := filepath.Join(dir, "in.wav")
	require.NoError(t, imgio.Save(imagePath, randomImage(5, 8, 6)))

	c := NewCodec()
	_, err := c.Encode(ctx, imagePath, audioPath)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "in.yaml")))

	_, _, err = c.Decode(ctx, audioPath, filepath.Join(dir, "out.png"), 0)
	assert.ErrorIs(t, err, errs.ErrDimensionMismatch)

	img, layout, err := c.Decode(ctx, audioPath, filepath.Join(dir, "out.png"), 8)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
	assert.Equal(t, 44100, layout.SampleRate)
}
