// Package blend stitches segments into one waveform and cuts it apart again.
//
// Blend overlap-adds segments of length L at a hop of h samples, fading each
// one in over its first L-h samples and out over its last L-h samples with a
// raised-cosine ramp. Split takes windows of length L at stride h back out of
// the sum. With a fade fraction of 0 the hop equals L and Split is the exact
// inverse of Blend; with any overlap the neighbors leak into every window
// and the recovered segments are only an approximation.
package blend
