package loaders

import (
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

func PNG() *ImageLoader {
	return NewImageLoader("png", png.Decode, "\x89PNG\r\n\x1a\n")
}

func JPEG() *ImageLoader {
	return NewImageLoader("jpeg", jpeg.Decode, "\xff\xd8\xff")
}

// GIF decodes the first frame only.
func GIF() *ImageLoader {
	return NewImageLoader("gif", gif.Decode, "GIF87a", "GIF89a")
}

func BMP() *ImageLoader {
	return NewImageLoader("bmp", bmp.Decode, "BM????\x00\x00\x00\x00")
}

func TIFF() *ImageLoader {
	return NewImageLoader("tiff", tiff.Decode, "II\x2a\x00", "MM\x00\x2a")
}

func WebP() *ImageLoader {
	return NewImageLoader("webp", webp.Decode, "RIFF????WEBPVP8")
}

// TextureLoaders returns every built-in decoder.
func TextureLoaders() []*ImageLoader {
	return []*ImageLoader{PNG(), JPEG(), GIF(), BMP(), TIFF(), WebP()}
}
