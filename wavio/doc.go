// Package wavio reads and writes the mono audio files the codec consumes and
// produces.
//
// WAV files go through github.com/faiface/beep/wav, FLAC files are read with
// github.com/mewkiz/flac. Anything that is not mono is rejected here, before
// it can reach the codec.
package wavio
