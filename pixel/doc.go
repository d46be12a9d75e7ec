// Package pixel implements the 16-bit 5-6-5 RGB color and image types used
// by AMOLED pixel panels.
//
// Colors and images are compatible with Go's native [color.Color] and
// [image.Image] / [draw.Image] interfaces. Image bytes are kept in the wire
// byte order so rectangle flushes can stream them without conversion.
package pixel
