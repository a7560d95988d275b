package assets

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

// ToBGRA redraws img onto a tightly packed, straight alpha canvas and swaps
// the red and blue channels.
func ToBGRA(img image.Image) (*metadata.DecodedImage, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("image has zero size (%dx%d)", b.Dx(), b.Dy())
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Src)

	pixels := canvas.Pix
	for i := 0; i+3 < len(pixels); i += 4 {
		pixels[i], pixels[i+2] = pixels[i+2], pixels[i]
	}

	decoded := &metadata.DecodedImage{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Format: metadata.PixelFormatBGRA8,
		Pixels: pixels,
	}
	if err := decoded.Validate(); err != nil {
		return nil, err
	}
	return decoded, nil
}
