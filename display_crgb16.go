package display

import (
	"encoding/binary"

	"github.com/openwrist/display/pixel"
)

// crgb16Display is the shared base for panels with a 16-bit 5-6-5 color
// framebuffer. Pixels are stored in wire byte order so flushes can stream
// framebuffer memory without conversion.
type crgb16Display struct {
	baseDisplay
}

func (d *crgb16Display) init(config *Config, order binary.ByteOrder) error {
	i := pixel.NewCRGB16Image(config.Width, config.Height)
	i.Order = order
	d.Image = i
	return nil
}

func (d *crgb16Display) fb() *pixel.CRGB16Image {
	return d.Image.(*pixel.CRGB16Image)
}
