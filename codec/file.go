package codec

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"

	"github.com/neurlang/otis/errs"
	"github.com/neurlang/otis/imgio"
	"github.com/neurlang/otis/wavio"
)

// Encode converts the image at imagePath into a mono WAV file at audioPath
// and writes the layout sidecar next to it.
func (c *Codec) Encode(ctx context.Context, imagePath, audioPath string) (*Encoded, error) {
	img, err := imgio.Load(imagePath)
	if err != nil {
		return nil, err
	}

	enc, err := c.ToAudio(ctx, img)
	if err != nil {
		return nil, err
	}

	if err := wavio.Save(audioPath, &wavio.Audio{Samples: enc.Samples, SampleRate: c.SampleRate}); err != nil {
		return nil, err
	}
	if err := enc.Layout.Save(LayoutPath(audioPath)); err != nil {
		return nil, err
	}
	return enc, nil
}

// Decode converts the mono audio file at audioPath into an image at
// imagePath. The layout sidecar is used when present; otherwise the audio is
// split evenly into columns segments. A non-zero columns must agree with the
// sidecar. The returned layout has every dimension filled in.
func (c *Codec) Decode(ctx context.Context, audioPath, imagePath string, columns int) (*image.NRGBA, *Layout, error) {
	audio, err := wavio.Load(audioPath)
	if err != nil {
		return nil, nil, err
	}

	layout, err := LoadLayout(LayoutPath(audioPath))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if columns < 1 {
			return nil, nil, errs.Mismatch("columns", columns, ">= 1 when audio has no layout sidecar")
		}
		layout = c.Layout(columns)
		layout.SampleRate = audio.SampleRate
	case err != nil:
		return nil, nil, err
	case columns > 0 && columns != layout.Columns:
		return nil, nil, errs.Mismatch("columns", columns, fmt.Sprintf("%d as recorded in the layout", layout.Columns))
	}

	if audio.SampleRate != layout.SampleRate {
		c.logger().Warn("sample rate differs from layout",
			"audio", audio.SampleRate, "layout", layout.SampleRate)
	}

	img, err := c.FromAudio(ctx, audio.Samples, layout)
	if err != nil {
		return nil, nil, err
	}
	if err := imgio.Save(imagePath, img); err != nil {
		return nil, nil, err
	}

	resolved, err := layout.Resolve(len(audio.Samples))
	if err != nil {
		return nil, nil, err
	}
	resolved.Rows = img.Bounds().Dy()
	return img, resolved, nil
}
