package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/neurlang/otis/analysis"
	"github.com/neurlang/otis/codec"
	"github.com/neurlang/otis/errs"
	"github.com/neurlang/otis/spectral"
)

// EnvPrefix prefixes the environment variables read by viper.
const EnvPrefix = "OTIS"

// Configuration keys.
const (
	KeySampleRate     = "sample_rate"
	KeySegmentLength  = "segment_length"
	KeyColumnDuration = "column_duration"
	KeyMaxDimension   = "max_dimension"
	KeyResizeFactor   = "resize_factor"
	KeyAutoFit        = "auto_fit"
	KeyCrossfade      = "crossfade"
	KeyBandWeights    = "band_weights"
	KeyGain           = "gain"
	KeyYReverse       = "y_reverse"
	KeyWorkers        = "workers"
	KeyNormalize      = "normalize"
	KeyLogLevel       = "log_level"
	KeyFrameLen       = "inspect.frame_len"
	KeyFrameShift     = "inspect.frame_shift"
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	c := codec.NewCodec()
	v.SetDefault(KeySampleRate, c.SampleRate)
	v.SetDefault(KeySegmentLength, 0)
	v.SetDefault(KeyColumnDuration, "0s")
	v.SetDefault(KeyMaxDimension, 0)
	v.SetDefault(KeyResizeFactor, 0.0)
	v.SetDefault(KeyAutoFit, false)
	v.SetDefault(KeyCrossfade, 0.0)
	v.SetDefault(KeyBandWeights, c.BandWeights[:])
	v.SetDefault(KeyGain, c.Gain)
	v.SetDefault(KeyYReverse, c.YReverse)
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyNormalize, c.Normalize)
	v.SetDefault(KeyLogLevel, "info")

	a := analysis.NewAnalyzer()
	v.SetDefault(KeyFrameLen, a.FrameLen)
	v.SetDefault(KeyFrameShift, a.FrameShift)
}

// Codec builds a validated codec from v.
func Codec(v *viper.Viper) (*codec.Codec, error) {
	weights, err := BandWeights(v.Get(KeyBandWeights))
	if err != nil {
		return nil, err
	}

	c := codec.NewCodec()
	c.SampleRate = v.GetInt(KeySampleRate)
	c.SegmentLength = v.GetInt(KeySegmentLength)
	c.ColumnDuration = v.GetDuration(KeyColumnDuration)
	c.MaxDimension = v.GetInt(KeyMaxDimension)
	c.ResizeFactor = v.GetFloat64(KeyResizeFactor)
	c.AutoFit = v.GetBool(KeyAutoFit)
	c.Crossfade = v.GetFloat64(KeyCrossfade)
	c.BandWeights = weights
	c.Gain = v.GetFloat64(KeyGain)
	c.YReverse = v.GetBool(KeyYReverse)
	c.Normalize = v.GetBool(KeyNormalize)
	if n := v.GetInt(KeyWorkers); n > 0 {
		c.Workers = n
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// Analyzer builds the spectral analyzer settings from v.
func Analyzer(v *viper.Viper) (*analysis.Analyzer, error) {
	weights, err := BandWeights(v.Get(KeyBandWeights))
	if err != nil {
		return nil, err
	}
	a := analysis.NewAnalyzer()
	a.FrameLen = v.GetInt(KeyFrameLen)
	a.FrameShift = v.GetInt(KeyFrameShift)
	a.BandWeights = weights
	return a, nil
}

// BandWeights parses three band weights from a YAML list or a comma
// separated string such as "1,1,2".
func BandWeights(raw any) ([spectral.NumBands]float64, error) {
	var w [spectral.NumBands]float64

	var items []any
	switch t := raw.(type) {
	case nil:
		return spectral.EqualWeights, nil
	case string:
		s := strings.Trim(strings.TrimSpace(t), "[]")
		for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
			items = append(items, f)
		}
	case []any:
		items = t
	case []float64:
		for _, f := range t {
			items = append(items, f)
		}
	case []string:
		for _, f := range t {
			items = append(items, f)
		}
	default:
		return w, errs.Invalid(KeyBandWeights, raw, "a list of three weights")
	}

	if len(items) != spectral.NumBands {
		return w, errs.Invalid(KeyBandWeights, raw, "a list of three weights")
	}
	for i, item := range items {
		f, err := cast.ToFloat64E(item)
		if err != nil {
			return w, errs.Invalid(KeyBandWeights, raw, "numeric weights")
		}
		w[i] = f
	}
	return w, nil
}
