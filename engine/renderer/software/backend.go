package software

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/texload/engine/core"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

var (
	ErrMemoryBudgetExceeded = errors.New("software: memory budget exceeded")
	ErrTextureNotFound      = errors.New("software: texture not found")
	ErrWrongThread          = errors.New("software: texture call made off the render thread")
	ErrOutOfBounds          = errors.New("software: write exceeds texture size")
)

type Config struct {
	// MemoryBudget caps the bytes of all live textures. Zero means no limit.
	MemoryBudget uint64
	// Multithreaded allows calls from any goroutine.
	Multithreaded bool
	// AffinityCheck, when set, must return true for every texture call. It
	// lets a single threaded setup verify calls arrive on the render thread.
	AffinityCheck func() bool
	// Formats describes the texture formats the backend accepts.
	Formats *metadata.FormatTable
}

type textureResource struct {
	pixels   []uint8
	size     uint64
	resident bool
}

// Backend keeps textures in host memory. Uploads become resident on Flush,
// the way a GPU backend would submit them at frame end.
type Backend struct {
	mu       sync.Mutex
	config   Config
	ids      *core.IdentifierPool
	textures map[uint32]*textureResource
	pending  []uint32
	used     uint64
}

func New(config Config) *Backend {
	if config.Formats == nil {
		config.Formats = metadata.DefaultFormatTable()
	}
	return &Backend{
		config:   config,
		ids:      core.NewIdentifierPool(64),
		textures: make(map[uint32]*textureResource),
	}
}

func (b *Backend) IsMultithreaded() bool {
	return b.config.Multithreaded
}

func (b *Backend) checkThread() error {
	if b.config.AffinityCheck != nil && !b.config.AffinityCheck() {
		return ErrWrongThread
	}
	return nil
}

func (b *Backend) TextureCreate(desc *metadata.TextureDescriptor) (*metadata.Texture, error) {
	if err := b.checkThread(); err != nil {
		return nil, err
	}
	info, err := b.config.Formats.Lookup(desc.Format)
	if err != nil {
		return nil, err
	}
	if desc.Size.Width == 0 || desc.Size.Height == 0 {
		return nil, fmt.Errorf("software: invalid texture size %dx%d", desc.Size.Width, desc.Size.Height)
	}
	size := uint64(desc.Size.Width) * uint64(desc.Size.Height) * uint64(info.BytesPerPixel)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.config.MemoryBudget > 0 && b.used+size > b.config.MemoryBudget {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrMemoryBudgetExceeded, size, b.used, b.config.MemoryBudget)
	}

	t := &metadata.Texture{
		Name:         desc.Label,
		Width:        desc.Size.Width,
		Height:       desc.Size.Height,
		Format:       desc.Format,
		ChannelCount: uint8(info.BytesPerPixel),
	}
	res := &textureResource{
		pixels: make([]uint8, size),
		size:   size,
	}
	t.ID = b.ids.Acquire(t)
	t.InternalData = res
	b.textures[t.ID] = res
	b.used += size

	core.LogDebug("software backend created texture '%s' (%d, %dx%d)", t.Name, t.ID, t.Width, t.Height)
	return t, nil
}

func (b *Backend) lookup(t *metadata.Texture) (*textureResource, error) {
	res, ok := b.textures[t.ID]
	if !ok || t.InternalData != res {
		return nil, fmt.Errorf("%w: '%s' (%d)", ErrTextureNotFound, t.Name, t.ID)
	}
	return res, nil
}

func (b *Backend) TextureWriteData(t *metadata.Texture, offset uint32, pixels []uint8) error {
	if err := b.checkThread(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.lookup(t)
	if err != nil {
		return err
	}
	if uint64(offset)+uint64(len(pixels)) > res.size {
		return fmt.Errorf("%w: %d bytes at offset %d into %d", ErrOutOfBounds, len(pixels), offset, res.size)
	}
	copy(res.pixels[offset:], pixels)
	res.resident = false
	t.Generation++
	return nil
}

func (b *Backend) TextureUpload(t *metadata.Texture) error {
	if err := b.checkThread(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.lookup(t); err != nil {
		return err
	}
	b.pending = append(b.pending, t.ID)
	return nil
}

func (b *Backend) TextureDestroy(t *metadata.Texture) error {
	if err := b.checkThread(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.lookup(t)
	if err != nil {
		return err
	}
	delete(b.textures, t.ID)
	b.used -= res.size
	if err := b.ids.Release(t.ID); err != nil {
		core.LogWarn("%s", err)
	}
	t.InternalData = nil
	core.LogDebug("software backend destroyed texture '%s' (%d)", t.Name, t.ID)
	return nil
}

// Flush makes every scheduled upload resident and returns how many there
// were. Uploads of textures destroyed in the meantime are skipped.
func (b *Backend) Flush() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for _, id := range b.pending {
		if res, ok := b.textures[id]; ok {
			res.resident = true
			count++
		}
	}
	b.pending = b.pending[:0]
	return count
}

// IsResident reports whether the texture's last write has been flushed.
func (b *Backend) IsResident(t *metadata.Texture) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.lookup(t)
	return err == nil && res.resident
}

// Pixels returns a copy of the texture contents.
func (b *Backend) Pixels(t *metadata.Texture) ([]uint8, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.lookup(t)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, len(res.pixels))
	copy(out, res.pixels)
	return out, nil
}

// IsAlive reports whether the texture has not been destroyed.
func (b *Backend) IsAlive(t *metadata.Texture) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.lookup(t)
	return err == nil
}

func (b *Backend) LiveTextures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.textures)
}

func (b *Backend) MemoryUsed() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}
