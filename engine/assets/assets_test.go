package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/spaghettifunk/texload/engine/assets/sources"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(10 * x), G: uint8(20 * y), B: 200, A: 255})
		}
	}
	return img
}

func encode(t *testing.T, format string, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "tiff":
		err = tiff.Encode(&buf, img, nil)
	default:
		t.Fatalf("unknown format %s", format)
	}
	if err != nil {
		t.Fatalf("encoding %s: %v", format, err)
	}
	return buf.Bytes()
}

func TestDetectAndDecode(t *testing.T) {
	dr := NewDefaultDecoderRegistry()
	src := testImage(4, 3)

	for _, format := range []string{"png", "jpeg", "gif", "bmp", "tiff"} {
		t.Run(format, func(t *testing.T) {
			data := encode(t, format, src)

			d, ok := dr.Detect(data)
			if !ok {
				t.Fatalf("no decoder claimed %s data", format)
			}
			if d.Name() != format {
				t.Fatalf("Detect picked %s, want %s", d.Name(), format)
			}

			decoded, err := Decode(d, data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if decoded.Width != 4 || decoded.Height != 3 {
				t.Errorf("decoded size %dx%d, want 4x3", decoded.Width, decoded.Height)
			}
			if decoded.Format != metadata.PixelFormatBGRA8 {
				t.Errorf("decoded format %s, want BGRA8", decoded.Format)
			}
		})
	}
}

func TestDetectRejectsUnknownData(t *testing.T) {
	dr := NewDefaultDecoderRegistry()
	if d, ok := dr.Detect([]byte("just some text, not an image")); ok {
		t.Errorf("Detect claimed plain text with %s", d.Name())
	}
	if _, ok := dr.Detect(nil); ok {
		t.Error("Detect claimed empty data")
	}
	if _, ok := dr.Detect([]byte("RIFF\x10\x00\x00\x00WEBPVP8 ")); !ok {
		t.Error("webp header not claimed")
	}
}

func TestDecodeCorruptStream(t *testing.T) {
	dr := NewDefaultDecoderRegistry()
	data := encode(t, "png", testImage(4, 4))
	data = data[:len(data)/2]

	d, ok := dr.Detect(data)
	if !ok {
		t.Fatal("truncated png header not claimed")
	}
	if _, err := Decode(d, data); err == nil {
		t.Error("Decode of a truncated png succeeded")
	}
}

func TestToBGRASwapsChannels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(2, 2, 4, 3))
	img.SetNRGBA(2, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	img.SetNRGBA(3, 2, color.NRGBA{R: 5, G: 6, B: 7, A: 255})

	decoded, err := ToBGRA(img)
	if err != nil {
		t.Fatalf("ToBGRA: %v", err)
	}
	want := []uint8{3, 2, 1, 4, 7, 6, 5, 255}
	if !bytes.Equal(decoded.Pixels, want) {
		t.Errorf("pixels = %v, want %v", decoded.Pixels, want)
	}
}

func TestToBGRARejectsEmptyImage(t *testing.T) {
	if _, err := ToBGRA(image.NewNRGBA(image.Rect(0, 0, 0, 5))); err == nil {
		t.Error("ToBGRA accepted a zero width image")
	}
}

type fakeSource struct {
	name string
}

func (fs *fakeSource) Exists(ctx context.Context, path string) (bool, error) {
	return true, nil
}

func (fs *fakeSource) Read(ctx context.Context, path string) (*metadata.Resource, error) {
	return &metadata.Resource{Name: fs.name, FullPath: path}, nil
}

func TestSourceRouting(t *testing.T) {
	am := NewAssetManager(&fakeSource{name: "disk"}, NewDefaultDecoderRegistry())
	am.RegisterSource("gs://", &fakeSource{name: "gcs"})
	defer am.Shutdown()

	ctx := context.Background()
	tests := map[string]string{
		"gs://bucket/a.png": "gcs",
		"images/a.png":      "disk",
		"/tmp/gs://x":       "disk",
	}
	for path, want := range tests {
		res, err := am.Read(ctx, path)
		if err != nil {
			t.Fatalf("Read(%q): %v", path, err)
		}
		if res.Name != want {
			t.Errorf("Read(%q) served by %s, want %s", path, res.Name, want)
		}
	}
}

func TestIsImagePath(t *testing.T) {
	tests := map[string]bool{
		"a.png":       true,
		"b.JPG":       true,
		"c.webp":      true,
		"d.png.lz4":   true,
		"e.txt":       false,
		"f.txt.lz4":   false,
		"noextension": false,
	}
	for path, want := range tests {
		if got := IsImagePath(path); got != want {
			t.Errorf("IsImagePath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatchReportsImages(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.png")
	if err := os.WriteFile(existing, encode(t, "png", testImage(2, 2)), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	am := NewAssetManager(sources.NewFileSource(""), NewDefaultDecoderRegistry())
	defer am.Shutdown()

	watchErr := make(chan error, 1)
	go func() { watchErr <- am.Watch(dir) }()

	select {
	case path := <-am.Events():
		if path != existing {
			t.Fatalf("first event %q, want %q", path, existing)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("existing image was not reported")
	}
	if err := <-watchErr; err != nil {
		t.Fatalf("Watch: %v", err)
	}

	created := filepath.Join(dir, "created.png")
	if err := os.WriteFile(created, encode(t, "png", testImage(2, 2)), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case path := <-am.Events():
			if path == created {
				return
			}
		case <-deadline:
			t.Fatal("created image was not reported")
		}
	}
}
