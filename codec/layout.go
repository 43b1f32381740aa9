package codec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/neurlang/otis/blend"
	"github.com/neurlang/otis/errs"
	"github.com/neurlang/otis/spectral"
)

// Layout is everything besides the samples that decoding needs: the audio
// alone does not say how long a segment was or how far segments overlap.
// It is stored as a YAML sidecar next to the audio file.
type Layout struct {
	SampleRate    int                        `yaml:"sample_rate"`
	SegmentLength int                        `yaml:"segment_length"`
	Hop           int                        `yaml:"hop"`
	Columns       int                        `yaml:"columns"`
	Rows          int                        `yaml:"rows"`
	Crossfade     float64                    `yaml:"crossfade"`
	BandWeights   [spectral.NumBands]float64 `yaml:"band_weights,flow"`
	Gain          float64                    `yaml:"gain"`
	YReverse      bool                       `yaml:"y_reverse"`
}

// ColumnDurationSeconds returns the duration of one segment.
func (l *Layout) ColumnDurationSeconds() float64 {
	return float64(l.SegmentLength) / float64(l.SampleRate)
}

// HopSeconds returns the time between the starts of consecutive segments.
// A video of the scanning column advances one column per hop.
func (l *Layout) HopSeconds() float64 {
	return float64(l.Hop) / float64(l.SampleRate)
}

// Samples returns the number of samples the encoded audio has.
func (l *Layout) Samples() int {
	return blend.Length(l.Columns, l.SegmentLength, l.Hop)
}

// Resolve returns a copy of l with the dimensions l leaves at zero derived
// from a length of n samples. Without a segment length the samples are
// taken as Columns back to back segments, any remainder dropped.
func (l *Layout) Resolve(n int) (*Layout, error) {
	r := *l
	if r.SegmentLength == 0 {
		if r.Columns < 1 {
			return nil, errs.Mismatch("columns", r.Columns, ">= 1 when the segment length is unknown")
		}
		r.SegmentLength = n / r.Columns
		if r.SegmentLength < 2 {
			return nil, errs.Mismatch("samples", n, fmt.Sprintf(">= %d for %d columns", 2*r.Columns, r.Columns))
		}
		r.Hop = r.SegmentLength
	}

	var err error
	if r.Hop == 0 {
		if r.Hop, err = blend.Hop(r.SegmentLength, r.Crossfade); err != nil {
			return nil, err
		}
	}
	if r.Columns == 0 {
		if r.Columns, err = blend.Columns(n, r.SegmentLength, r.Hop); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

// LayoutPath returns the sidecar path for an audio file.
func LayoutPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".yaml"
}

// Save writes l as YAML to path.
func (l *Layout) Save(path string) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("layout: encode: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadLayout reads a YAML layout from path.
func LoadLayout(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("layout: open %q: %w", path, err)
	}
	defer f.Close()

	l, err := ReadLayout(f)
	if err != nil {
		return nil, fmt.Errorf("layout: parse %q: %w", path, err)
	}
	return l, nil
}

// ReadLayout decodes a YAML layout from r. Unknown keys are rejected, and
// gain, band_weights and y_reverse default to what [NewCodec] encodes with
// when left out.
func ReadLayout(r io.Reader) (*Layout, error) {
	l := &Layout{
		BandWeights: spectral.EqualWeights,
		Gain:        1,
		YReverse:    true,
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(l); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return l, nil
}
