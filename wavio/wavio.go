package wavio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/mewkiz/flac"

	"github.com/neurlang/otis/errs"
)

// Precision is the byte depth of written WAV samples.
const Precision = 2

// Audio is a mono waveform with samples in [-1, 1].
type Audio struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the length of a in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate == 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Load reads a mono .wav or .flac file.
func Load(path string) (*Audio, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		a, err := DecodeWav(f)
		if err != nil {
			return nil, fmt.Errorf("wavio: %s: %w", path, err)
		}
		return a, nil
	case ".flac":
		a, err := LoadFlac(path)
		if err != nil {
			return nil, fmt.Errorf("wavio: %s: %w", path, err)
		}
		return a, nil
	}
	return nil, errs.New(errs.ErrUnsupportedAudioFormat, "extension", filepath.Ext(path), ".wav or .flac")
}

// wavScale undoes the divisor beep's wav decoder applies to signed PCM,
// 1<<(8*precision)-1, so that samples come back on the scale beep encodes
// them with, full scale at 1<<(8*precision-1)-1. 8-bit PCM is unsigned and
// decoded correctly.
func wavScale(precision int) float64 {
	if precision < 2 {
		return 1
	}
	bits := uint(8 * precision)
	return float64(uint64(1)<<bits-1) / float64(uint64(1)<<(bits-1)-1)
}

// DecodeWav reads a mono WAV stream.
func DecodeWav(r io.Reader) (*Audio, error) {
	stream, format, err := wav.Decode(r)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if format.NumChannels != 1 {
		return nil, errs.New(errs.ErrUnsupportedAudioFormat, "channels", format.NumChannels, "1")
	}

	a := &Audio{
		Samples:    make([]float64, 0, stream.Len()),
		SampleRate: int(format.SampleRate),
	}
	scale := wavScale(format.Precision)
	buf := make([][2]float64, 512)
	for {
		n, ok := stream.Stream(buf)
		for _, s := range buf[:n] {
			a.Samples = append(a.Samples, s[0]*scale)
		}
		if !ok {
			break
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return a, nil
}

// LoadFlac reads a mono FLAC file.
func LoadFlac(path string) (*Audio, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	info := stream.Info
	if info.NChannels != 1 {
		return nil, errs.New(errs.ErrUnsupportedAudioFormat, "channels", info.NChannels, "1")
	}

	scale := float64(int64(1) << (info.BitsPerSample - 1))
	a := &Audio{
		Samples:    make([]float64, 0, info.NSamples),
		SampleRate: int(info.SampleRate),
	}
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, s := range frame.Subframes[0].Samples {
			a.Samples = append(a.Samples, float64(s)/scale)
		}
	}
	return a, nil
}

// Save writes a as a 16-bit mono WAV file.
func Save(path string, a *Audio) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeWav(f, a); err != nil {
		f.Close()
		return fmt.Errorf("wavio: %s: %w", path, err)
	}
	return f.Close()
}

// EncodeWav writes a as a 16-bit mono WAV stream. Samples outside [-1, 1]
// are clipped.
func EncodeWav(w io.WriteSeeker, a *Audio) error {
	if a.SampleRate <= 0 {
		return errs.Invalid("sample_rate", a.SampleRate, "> 0")
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(a.SampleRate),
		NumChannels: 1,
		Precision:   Precision,
	}
	pos := 0
	streamer := beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= len(a.Samples) {
			return 0, false
		}
		for n < len(samples) && pos < len(a.Samples) {
			v := min(max(a.Samples[pos], -1), 1)
			samples[n] = [2]float64{v, v}
			n++
			pos++
		}
		return n, true
	})
	return wav.Encode(w, streamer, format)
}
