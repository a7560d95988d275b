package sources

import (
	"context"
	"testing"
)

func TestParseGCSPath(t *testing.T) {
	tests := []struct {
		in         string
		bucket     string
		object     string
		shouldFail bool
	}{
		{in: "gs://assets/textures/brick.png", bucket: "assets", object: "textures/brick.png"},
		{in: "gs://assets/a.png", bucket: "assets", object: "a.png"},
		{in: "gs://assets", shouldFail: true},
		{in: "gs://assets/", shouldFail: true},
		{in: "gs:///a.png", shouldFail: true},
		{in: "/local/a.png", shouldFail: true},
	}
	for _, tt := range tests {
		bucket, object, err := ParseGCSPath(tt.in)
		if tt.shouldFail {
			if err == nil {
				t.Errorf("ParseGCSPath(%q) succeeded, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGCSPath(%q): %v", tt.in, err)
			continue
		}
		if bucket != tt.bucket || object != tt.object {
			t.Errorf("ParseGCSPath(%q) = (%q, %q), want (%q, %q)", tt.in, bucket, object, tt.bucket, tt.object)
		}
	}
}

func TestGCSSourceRejectsBadPaths(t *testing.T) {
	gs := NewGCSSource()
	defer gs.Close()

	if _, err := gs.Exists(context.Background(), "not-a-gcs-path"); err == nil {
		t.Error("Exists accepted a non gs:// path")
	}
}
