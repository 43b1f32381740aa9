// Package analysis inspects encoded audio with a short-time Fourier
// transform.
//
// It reports how the energy of each analysis frame splits over the Low, Mid
// and High bands, which tells at a glance whether the red, green or blue
// channel dominates a stretch of audio, and it can dump the magnitude
// spectrogram as half precision floats.
package analysis
