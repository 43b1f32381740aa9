package scan

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/neurlang/otis/codec"
	"github.com/neurlang/otis/errs"
)

// Bar is the color of the scanning column.
var Bar = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// FPS returns the frame rate at which one frame lasts one hop.
func FPS(l *codec.Layout) (float64, error) {
	if l.SampleRate <= 0 || l.Hop <= 0 {
		return 0, errs.Invalid("layout", fmt.Sprintf("sample_rate=%d hop=%d", l.SampleRate, l.Hop), "both > 0")
	}
	return 1 / l.HopSeconds(), nil
}

// Frame returns a copy of img with column x painted in Bar.
func Frame(img image.Image, x int) *image.NRGBA {
	b := img.Bounds()
	frame := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(frame, frame.Bounds(), img, b.Min, draw.Src)
	draw.Draw(frame, image.Rect(x, 0, x+1, b.Dy()), image.NewUniform(Bar), image.Point{}, draw.Src)
	return frame
}

// Frames calls fn with one frame per column, in column order.
func Frames(img image.Image, fn func(x int, frame *image.NRGBA) error) error {
	for x := range img.Bounds().Dx() {
		if err := fn(x, Frame(img, x)); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the file name of frame x.
func Name(x int) string {
	return fmt.Sprintf("col%06d.png", x)
}

// WriteFrames writes one PNG per column into dir and returns the paths in
// column order.
func WriteFrames(ctx context.Context, dir string, img image.Image) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, img.Bounds().Dx())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for x := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, Name(x))
			if err := writePNG(path, Frame(img, x)); err != nil {
				return err
			}
			paths[x] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
