package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"

	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

// CompressedSuffix marks files stored as an lz4 frame.
const CompressedSuffix = ".lz4"

// FileSource reads from the local file system. Relative paths are resolved
// against Root when it is set. Files ending in CompressedSuffix are
// decompressed transparently.
type FileSource struct {
	Root string
}

func NewFileSource(root string) *FileSource {
	return &FileSource{Root: root}
}

func (f *FileSource) resolve(path string) string {
	if f.Root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.Root, path)
}

func (f *FileSource) Exists(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(f.resolve(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (f *FileSource) Read(ctx context.Context, path string) (*metadata.Resource, error) {
	full := f.resolve(path)

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(full)
	if strings.EqualFold(filepath.Ext(full), CompressedSuffix) {
		data, err = decompress(data)
		if err != nil {
			return nil, fmt.Errorf("decompressing '%s': %w", full, err)
		}
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	return &metadata.Resource{
		Name:     name,
		FullPath: full,
		DataSize: uint64(len(data)),
		Data:     data,
	}, nil
}

func decompress(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}
