// Package resize bounds image dimensions before encoding.
//
// The width of the resized image fixes the number of segments, and so the
// length of the audio, while its height has to fit the band capacity of the
// segment length. Scaling uses bilinear interpolation from
// golang.org/x/image/draw and always preserves the aspect ratio.
package resize
