package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"cloud.google.com/go/storage"

	"github.com/spaghettifunk/texload/engine/core"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

// GCSScheme prefixes paths served by GCSSource.
const GCSScheme = "gs://"

// GCSSource reads objects from Google Cloud Storage. Paths have the form
// gs://bucket/object. The client is created on first use with the default
// credentials.
type GCSSource struct {
	mu     sync.Mutex
	client *storage.Client
}

func NewGCSSource() *GCSSource {
	return &GCSSource{}
}

// NewGCSSourceWithClient uses an already configured client.
func NewGCSSourceWithClient(client *storage.Client) *GCSSource {
	return &GCSSource{client: client}
}

func (gs *GCSSource) getClient(ctx context.Context) (*storage.Client, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.client != nil {
		return gs.client, nil
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS storage client: %w", err)
	}
	gs.client = client
	return client, nil
}

func (gs *GCSSource) Exists(ctx context.Context, gcsURL string) (bool, error) {
	bucket, object, err := ParseGCSPath(gcsURL)
	if err != nil {
		return false, err
	}
	client, err := gs.getClient(ctx)
	if err != nil {
		return false, err
	}

	if _, err := client.Bucket(bucket).Object(object).Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("getting object attributes for %q: %w", gcsURL, err)
	}
	return true, nil
}

func (gs *GCSSource) Read(ctx context.Context, gcsURL string) (*metadata.Resource, error) {
	bucket, object, err := ParseGCSPath(gcsURL)
	if err != nil {
		return nil, err
	}
	client, err := gs.getClient(ctx)
	if err != nil {
		return nil, err
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening object from GCS %q: %w", gcsURL, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("downloading from GCS %q: %w", gcsURL, err)
	}
	core.LogDebug("downloaded '%s' from GCS (%d bytes)", gcsURL, len(data))

	return &metadata.Resource{
		Name:     path.Base(object),
		FullPath: gcsURL,
		DataSize: uint64(len(data)),
		Data:     data,
	}, nil
}

// Close releases the client, if one was created.
func (gs *GCSSource) Close() error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.client == nil {
		return nil
	}
	err := gs.client.Close()
	gs.client = nil
	return err
}

// ParseGCSPath splits gs://bucket/object into its parts.
func ParseGCSPath(gcsURL string) (string, string, error) {
	if !strings.HasPrefix(gcsURL, GCSScheme) {
		return "", "", fmt.Errorf("%q is not a %s URL", gcsURL, GCSScheme)
	}
	rest := strings.TrimPrefix(gcsURL, GCSScheme)
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%q must have the form %sbucket/object", gcsURL, GCSScheme)
	}
	return bucket, object, nil
}
