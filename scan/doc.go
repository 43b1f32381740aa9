// Package scan renders the frames of a scanning-column video: the image with
// a white bar over the column whose segment is playing. Muxing the frames
// with the audio is left to an external tool; FPS gives the frame rate that
// keeps the bar on segment boundaries.
package scan
