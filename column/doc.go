// Package column turns image columns into audio segments and back.
//
// A column of pixels becomes a Hermitian spectrum of length L, one bin per
// row in each of the Low, Mid and High bands, and the inverse FFT of that
// spectrum is the segment. Analysis runs the forward FFT and reads the
// magnitude back from the very same bins.
//
// Columns share no state, so SynthesizeAll and AnalyzeAll process them
// concurrently and collect the results in column order.
package column
