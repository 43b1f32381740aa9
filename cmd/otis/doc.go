// Command otis converts images to audio and audio back to images.
//
// Every column of the image becomes a short segment of sound whose low,
// mid and high frequency bands carry the red, green and blue values of the
// column. Decoding reverses the process. A YAML layout written next to the
// audio records what decoding needs; without it, pass --columns.
//
// Usage:
//
//	otis encode <image> [audio.wav]    image to audio
//	otis decode <audio> [image.png]    audio (.wav or .flac, mono) to image
//	otis inspect <audio>               per band energy of an audio file
//
// encode and decode take --frames <dir> to also render one PNG per column
// with a white bar over the playing column, for muxing into a video.
//
// Settings can also be given in otis.yaml or as OTIS_* environment variables.
package main
