package assets

import (
	"context"
	"image"

	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

// ByteSource reads whole files from some storage.
type ByteSource interface {
	// Exists reports whether path names a readable file. A missing file is
	// (false, nil); an error means the storage could not be asked.
	Exists(ctx context.Context, path string) (bool, error)
	// Read returns the full contents of path.
	Read(ctx context.Context, path string) (*metadata.Resource, error)
}

// Decoder turns an encoded image into pixels. Decoders claim their format by
// looking at the leading bytes of the data.
type Decoder interface {
	Name() string
	Match(header []byte) bool
	Decode(data []byte) (image.Image, error)
}
