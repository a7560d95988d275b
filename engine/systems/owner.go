package systems

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/spaghettifunk/texload/engine/core"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

const defaultTextureName = "texture"

// Owner holds textures and destroys them when it is destroyed. Texture names
// are unique within one owner.
type Owner struct {
	id       uuid.UUID
	name     string
	renderer *RendererSystem

	mu        sync.Mutex
	textures  map[string]*metadata.Texture
	reserved  map[string]struct{}
	destroyed bool
}

func NewOwner(name string, r *RendererSystem) *Owner {
	return &Owner{
		id:       uuid.New(),
		name:     name,
		renderer: r,
		textures: make(map[string]*metadata.Texture),
		reserved: make(map[string]struct{}),
	}
}

func (o *Owner) ID() string {
	return o.id.String()
}

func (o *Owner) Name() string {
	return o.name
}

func (o *Owner) IsDestroyed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.destroyed
}

func (o *Owner) taken(name string) bool {
	if _, ok := o.textures[name]; ok {
		return true
	}
	_, ok := o.reserved[name]
	return ok
}

// reserveName picks base, or base_N with the smallest free N, and holds it
// until adopt or releaseName.
func (o *Owner) reserveName(base string) (string, error) {
	if base == "" {
		base = defaultTextureName
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.destroyed {
		return "", core.ErrOwnerDestroyed
	}
	name := base
	for i := 1; o.taken(name); i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	o.reserved[name] = struct{}{}
	return name, nil
}

func (o *Owner) releaseName(name string) {
	o.mu.Lock()
	delete(o.reserved, name)
	o.mu.Unlock()
}

// adopt binds texture to the owner under its reserved name. It fails once
// the owner is destroyed; the caller then still holds the texture.
func (o *Owner) adopt(name string, texture *metadata.Texture) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.reserved, name)
	if o.destroyed {
		return core.ErrOwnerDestroyed
	}
	texture.OwnerID = o.id.String()
	o.textures[name] = texture
	return nil
}

// Texture looks a texture up by name.
func (o *Owner) Texture(name string) (*metadata.Texture, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	t, ok := o.textures[name]
	return t, ok
}

// Textures returns the owned textures sorted by name.
func (o *Owner) Textures() []*metadata.Texture {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]*metadata.Texture, 0, len(o.textures))
	for _, t := range o.textures {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DestroyTexture destroys one texture ahead of the owner.
func (o *Owner) DestroyTexture(texture *metadata.Texture) error {
	o.mu.Lock()
	t, ok := o.textures[texture.Name]
	if !ok || t != texture {
		o.mu.Unlock()
		return fmt.Errorf("texture '%s' is not owned by '%s'", texture.Name, o.name)
	}
	delete(o.textures, texture.Name)
	o.mu.Unlock()

	o.renderer.TextureDestroy(texture)
	return nil
}

// Destroy destroys every owned texture. Loads still in flight for this owner
// fail when they try to hand their texture over.
func (o *Owner) Destroy() {
	o.mu.Lock()
	if o.destroyed {
		o.mu.Unlock()
		return
	}
	o.destroyed = true
	textures := o.textures
	o.textures = make(map[string]*metadata.Texture)
	o.mu.Unlock()

	for _, t := range textures {
		o.renderer.TextureDestroy(t)
	}
	core.LogDebug("owner '%s' destroyed with %d textures", o.name, len(textures))
}
