package metadata

import "github.com/gogpu/gputypes"

type TextureFlag int

const (
	/** @brief Indicates if the texture has transparency. */
	TextureFlagHasTransparency TextureFlag = 0x1
)

/** @brief Holds bit flags for textures.. */
type TextureFlagBits uint8

/**
 * @brief Describes the texture a backend must allocate.
 */
type TextureDescriptor struct {
	/** @brief The debug label, also the texture name. */
	Label string
	/** @brief The pixel dimensions. Depth is always 1. */
	Size gputypes.Extent3D
	/** @brief Always 1, only the base level is populated. */
	MipLevelCount uint32
	/** @brief The GPU pixel format. */
	Format gputypes.TextureFormat
	/** @brief How the texture will be used. */
	Usage gputypes.TextureUsage
	/** @brief Always 2D. */
	Dimension gputypes.TextureDimension
}

// SampledTextureDescriptor returns the descriptor used for every image load:
// a single-level 2D texture that can be sampled and copied into.
func SampledTextureDescriptor(name string, width, height uint32, format gputypes.TextureFormat) *TextureDescriptor {
	return &TextureDescriptor{
		Label: name,
		Size: gputypes.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		Dimension:     gputypes.TextureDimension2D,
	}
}

/**
 * @brief Represents a texture.
 */
type Texture struct {
	/** @brief The unique texture identifier, assigned by the backend. */
	ID uint32
	/** @brief The identifier of the owner holding this texture. */
	OwnerID string
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The GPU pixel format. */
	Format gputypes.TextureFormat
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief Holds various Flags for this texture. */
	Flags TextureFlagBits
	/** @brief The texture Generation. Incremented every time the data is written. */
	Generation uint32
	/** @brief The texture Name, unique within its owner. */
	Name string
	/** @brief Backend specific data. */
	InternalData interface{}
}

func (t *Texture) HasFlag(flag TextureFlag) bool {
	return t.Flags&TextureFlagBits(flag) != 0
}

func (t *Texture) SetFlag(flag TextureFlag) {
	t.Flags |= TextureFlagBits(flag)
}
