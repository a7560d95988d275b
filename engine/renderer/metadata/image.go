package metadata

import "fmt"

/** @brief The byte layout of one decoded pixel. */
type PixelFormat int

const (
	/** @brief 8-bit per channel, blue green red alpha, straight alpha. */
	PixelFormatBGRA8 PixelFormat = iota
)

func (pf PixelFormat) BytesPerPixel() uint32 {
	switch pf {
	case PixelFormatBGRA8:
		return 4
	default:
		return 0
	}
}

func (pf PixelFormat) String() string {
	switch pf {
	case PixelFormatBGRA8:
		return "BGRA8"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(pf))
	}
}

/**
 * @brief A decoded image ready to be copied into a texture.
 */
type DecodedImage struct {
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief The layout of Pixels. */
	Format PixelFormat
	/** @brief The pixel data of the image, tightly packed rows. */
	Pixels []uint8
}

// Validate checks that the buffer matches the dimensions exactly.
func (di *DecodedImage) Validate() error {
	if di.Width == 0 || di.Height == 0 {
		return fmt.Errorf("image has zero size (%dx%d)", di.Width, di.Height)
	}
	bpp := di.Format.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("unknown pixel format %s", di.Format)
	}
	want := uint64(di.Width) * uint64(di.Height) * uint64(bpp)
	if uint64(len(di.Pixels)) != want {
		return fmt.Errorf("pixel buffer holds %d bytes, %dx%d %s needs %d", len(di.Pixels), di.Width, di.Height, di.Format, want)
	}
	return nil
}

// HasTransparency reports whether any pixel has an alpha below 255.
func (di *DecodedImage) HasTransparency() bool {
	if di.Format != PixelFormatBGRA8 {
		return false
	}
	for i := 3; i < len(di.Pixels); i += 4 {
		if di.Pixels[i] < 255 {
			return true
		}
	}
	return false
}
