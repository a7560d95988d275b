package loaders

import (
	"bytes"
	"fmt"
	"image"
	"io"
)

// ImageLoader decodes one container format. It claims data whose leading
// bytes start with any of its magic sequences; a '?' in a magic sequence
// matches any byte.
type ImageLoader struct {
	name   string
	magics []string
	decode func(io.Reader) (image.Image, error)
}

func NewImageLoader(name string, decode func(io.Reader) (image.Image, error), magics ...string) *ImageLoader {
	return &ImageLoader{
		name:   name,
		magics: magics,
		decode: decode,
	}
}

func (il *ImageLoader) Name() string {
	return il.name
}

func (il *ImageLoader) Match(header []byte) bool {
	for _, magic := range il.magics {
		if matchMagic(magic, header) {
			return true
		}
	}
	return false
}

func (il *ImageLoader) Decode(data []byte) (image.Image, error) {
	img, err := il.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", il.name, err)
	}
	return img, nil
}

func matchMagic(magic string, header []byte) bool {
	if len(header) < len(magic) {
		return false
	}
	for i := 0; i < len(magic); i++ {
		if magic[i] != '?' && magic[i] != header[i] {
			return false
		}
	}
	return true
}
