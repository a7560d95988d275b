package sources

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pierrec/lz4"
)

func TestFileSourceExists(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSource(dir)
	ctx := context.Background()

	tests := []struct {
		path string
		want bool
	}{
		{path: "a.png", want: true},
		{path: filepath.Join(dir, "a.png"), want: true},
		{path: "missing.png", want: false},
		{path: ".", want: false},
	}
	for _, tt := range tests {
		got, err := fs.Exists(ctx, tt.path)
		if err != nil {
			t.Fatalf("Exists(%q): %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("Exists(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFileSourceRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brick.png")
	if err := os.WriteFile(path, []byte("raw bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFileSource("").Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res.Name != "brick.png" || string(res.Data) != "raw bytes" || res.DataSize != 9 {
		t.Errorf("Read = %+v", res)
	}

	if _, err := NewFileSource("").Read(context.Background(), filepath.Join(dir, "nope.png")); err == nil {
		t.Error("Read of a missing file succeeded")
	}
}

func TestFileSourceReadCompressed(t *testing.T) {
	payload := bytes.Repeat([]byte("texture-bytes-"), 100)

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "brick.png.lz4"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFileSource(dir).Read(context.Background(), "brick.png.lz4")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res.Name != "brick.png" {
		t.Errorf("Name = %q, want brick.png", res.Name)
	}
	if !bytes.Equal(res.Data, payload) {
		t.Error("decompressed data does not match")
	}
}

func TestFileSourceReadCorruptCompressed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.png.lz4"), []byte("not lz4 at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileSource(dir).Read(context.Background(), "bad.png.lz4"); err == nil {
		t.Error("Read of a corrupt lz4 file succeeded")
	}
}
