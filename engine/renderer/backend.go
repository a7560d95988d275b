package renderer

import "github.com/spaghettifunk/texload/engine/renderer/metadata"

// RendererBackend is the GPU resource API textures are created with.
type RendererBackend interface {
	// TextureCreate allocates an uninitialized texture.
	TextureCreate(desc *metadata.TextureDescriptor) (*metadata.Texture, error)
	// TextureWriteData copies pixels into the texture at offset.
	TextureWriteData(texture *metadata.Texture, offset uint32, pixels []uint8) error
	// TextureUpload schedules the texture contents for transfer to the GPU.
	TextureUpload(texture *metadata.Texture) error
	TextureDestroy(texture *metadata.Texture) error
	// IsMultithreaded reports whether the calls above may come from any
	// goroutine. When false they must be marshalled onto the render thread.
	IsMultithreaded() bool
}
