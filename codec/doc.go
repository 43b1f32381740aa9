// Package codec converts between images and mono audio.
//
// Encoding resizes the image, turns every column into a segment whose
// spectrum carries the column's red, green and blue values in a low, mid and
// high frequency band, and crossfades the segments into one waveform.
// Decoding cuts the waveform back into segments and reads the bands out
// again. The [Layout] returned by encoding holds the parameters decoding
// needs; [Codec.Encode] stores it as a YAML sidecar next to the audio file.
//
// With a crossfade of 0 the round trip is exact up to floating point
// rounding. Any crossfade makes neighboring segments leak into each other and
// decoding becomes an approximation; out-of-range magnitudes are clamped to
// valid channel values.
package codec
