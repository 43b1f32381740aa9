// Package spectral maps pixels to band magnitudes and back.
//
// The usable spectrum of a real segment of length L is the bin range
// [1, L/2], split into three contiguous bands:
//   - Low carries the red channel
//   - Mid carries the green channel
//   - High carries the blue channel
//
// Every band magnitude is given zero phase before the inverse transform, and
// the decode direction reads the magnitude only, so both directions agree on
// the same convention.
package spectral
