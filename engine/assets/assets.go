package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/texload/engine/assets/loaders"
	"github.com/spaghettifunk/texload/engine/assets/sources"
	"github.com/spaghettifunk/texload/engine/core"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

var ErrManagerClosed = errors.New("asset manager already closed")

// AssetManager routes paths to byte sources by scheme, owns the decoder
// registry and optionally watches directories for new images.
type AssetManager struct {
	mutex sync.RWMutex

	// scheme ("gs://") -> source, "" is the fallback
	sources  map[string]ByteSource
	decoders *DecoderRegistry

	fsnotify     *fsnotify.Watcher
	isClosed     bool
	eventsClosed bool
	closeOnce    sync.Once
	done         chan struct{}
	events   chan string
	errors   chan error
}

func NewAssetManager(fallback ByteSource, decoders *DecoderRegistry) *AssetManager {
	return &AssetManager{
		sources:  map[string]ByteSource{"": fallback},
		decoders: decoders,
		done:     make(chan struct{}),
		events:   make(chan string, 16),
		errors:   make(chan error, 1),
	}
}

// NewDefaultDecoderRegistry registers every built-in decoder.
func NewDefaultDecoderRegistry() *DecoderRegistry {
	dr := NewDecoderRegistry()
	for _, l := range loaders.TextureLoaders() {
		dr.Register(l)
	}
	return dr
}

// RegisterSource serves every path starting with scheme from src.
func (am *AssetManager) RegisterSource(scheme string, src ByteSource) {
	am.mutex.Lock()
	am.sources[scheme] = src
	am.mutex.Unlock()
}

// SourceFor picks the source with the longest matching scheme.
func (am *AssetManager) SourceFor(path string) ByteSource {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	best := ""
	for scheme := range am.sources {
		if strings.HasPrefix(path, scheme) && len(scheme) > len(best) {
			best = scheme
		}
	}
	return am.sources[best]
}

func (am *AssetManager) Exists(ctx context.Context, path string) (bool, error) {
	src := am.SourceFor(path)
	if src == nil {
		return false, fmt.Errorf("no byte source registered for '%s'", path)
	}
	return src.Exists(ctx, path)
}

func (am *AssetManager) Read(ctx context.Context, path string) (*metadata.Resource, error) {
	src := am.SourceFor(path)
	if src == nil {
		return nil, fmt.Errorf("no byte source registered for '%s'", path)
	}
	return src.Read(ctx, path)
}

func (am *AssetManager) Decoders() *DecoderRegistry {
	return am.decoders
}

// Watch starts reporting image files created or written below dir on
// Events. Existing files are reported once as well, so Events must be
// drained while Watch runs.
func (am *AssetManager) Watch(dir string) error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return ErrManagerClosed
	}
	start := false
	if am.fsnotify == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			am.mutex.Unlock()
			return err
		}
		am.fsnotify = w
		start = true
	}
	am.mutex.Unlock()

	if start {
		go am.start()
	}
	return am.watchRecursive(dir)
}

// Events delivers paths of image files seen by Watch.
func (am *AssetManager) Events() <-chan string {
	return am.events
}

// Errors delivers watcher errors.
func (am *AssetManager) Errors() <-chan error {
	return am.errors
}

func (am *AssetManager) Shutdown() error {
	am.closeOnce.Do(func() { close(am.done) })

	am.mutex.Lock()
	defer am.mutex.Unlock()

	if am.isClosed {
		return nil
	}
	am.isClosed = true
	if am.fsnotify == nil {
		am.closeEvents()
	}
	return nil
}

// closeEvents must be called with the mutex held.
func (am *AssetManager) closeEvents() {
	if am.eventsClosed {
		return
	}
	am.eventsClosed = true
	close(am.events)
	close(am.errors)
}

func (am *AssetManager) start() {
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("failed to watch new directory '%s': %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("%s", err)
			am.mutex.RLock()
			if !am.eventsClosed {
				select {
				case am.errors <- err:
				default:
				}
			}
			am.mutex.RUnlock()

		case <-am.done:
			am.fsnotify.Close()
			am.mutex.Lock()
			am.closeEvents()
			am.mutex.Unlock()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

func (am *AssetManager) handleFileEvent(path string) {
	if !IsImagePath(path) {
		return
	}

	am.mutex.RLock()
	defer am.mutex.RUnlock()

	if am.eventsClosed {
		return
	}
	select {
	case am.events <- path:
	case <-am.done:
	}
}

// IsImagePath reports whether the extension looks like a supported image.
// Detection during loading never relies on it.
func IsImagePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == sources.CompressedSuffix {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	default:
		return false
	}
}
