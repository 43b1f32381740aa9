// Package imgio decodes and encodes the image files on either side of the
// codec. Decoded images are normalized to *image.NRGBA anchored at the
// origin, which is the only pixel layout the codec reads.
package imgio
