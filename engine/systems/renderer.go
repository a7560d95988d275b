package systems

import (
	"fmt"

	"github.com/spaghettifunk/texload/engine/core"
	"github.com/spaghettifunk/texload/engine/renderer"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

// RendererSystem talks to the backend on the thread the backend requires.
type RendererSystem struct {
	backend  renderer.RendererBackend
	executor renderer.Executor
}

func NewRendererSystem(backend renderer.RendererBackend, executor renderer.Executor) (*RendererSystem, error) {
	if backend == nil {
		return nil, fmt.Errorf("func NewRendererSystem - backend is required")
	}
	if executor == nil {
		if !backend.IsMultithreaded() {
			return nil, fmt.Errorf("func NewRendererSystem - a single threaded backend needs an executor")
		}
		executor = renderer.Inline{}
	}
	return &RendererSystem{
		backend:  backend,
		executor: executor,
	}, nil
}

func (r *RendererSystem) call(fn func() error) error {
	if r.backend.IsMultithreaded() {
		return fn()
	}
	return r.executor.Call(fn)
}

// TextureCreate allocates a texture, copies pixels into it and schedules the
// upload, all in one trip to the render thread. Nothing is left allocated
// when it fails.
func (r *RendererSystem) TextureCreate(desc *metadata.TextureDescriptor, pixels []uint8) (*metadata.Texture, error) {
	var texture *metadata.Texture
	err := r.call(func() error {
		t, err := r.backend.TextureCreate(desc)
		if err != nil {
			return err
		}
		if err := r.backend.TextureWriteData(t, 0, pixels); err != nil {
			r.destroyNow(t)
			return err
		}
		if err := r.backend.TextureUpload(t); err != nil {
			r.destroyNow(t)
			return err
		}
		texture = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return texture, nil
}

func (r *RendererSystem) destroyNow(t *metadata.Texture) {
	if err := r.backend.TextureDestroy(t); err != nil {
		core.LogError("failed to destroy texture '%s': %s", t.Name, err)
	}
}

// TextureDestroy releases the texture. Single threaded backends get the
// request posted to the render thread without waiting for it.
func (r *RendererSystem) TextureDestroy(t *metadata.Texture) {
	if r.backend.IsMultithreaded() {
		r.destroyNow(t)
		return
	}
	r.executor.Post(func() {
		r.destroyNow(t)
	})
}

// Sync waits until everything posted to the render thread so far has run.
func (r *RendererSystem) Sync() error {
	return r.call(func() error { return nil })
}

func (r *RendererSystem) Backend() renderer.RendererBackend {
	return r.backend
}
