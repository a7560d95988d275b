package metadata

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
)

/**
 * @brief Layout information for a GPU texture format.
 */
type FormatInfo struct {
	/** @brief Bytes for one pixel. */
	BytesPerPixel uint32
	/** @brief Width in pixels of one block, 1 for uncompressed formats. */
	BlockWidth uint32
	/** @brief Height in pixels of one block, 1 for uncompressed formats. */
	BlockHeight uint32
	/** @brief The decoded pixel layout copied into this format. */
	Source PixelFormat
}

// FormatTable maps GPU formats to their layout. It is built explicitly and
// handed to whoever needs it.
type FormatTable struct {
	mu      sync.RWMutex
	formats map[gputypes.TextureFormat]FormatInfo
}

func NewFormatTable() *FormatTable {
	return &FormatTable{
		formats: make(map[gputypes.TextureFormat]FormatInfo),
	}
}

// DefaultFormatTable knows the uncompressed 8-bit BGRA format.
func DefaultFormatTable() *FormatTable {
	ft := NewFormatTable()
	ft.Register(gputypes.TextureFormatBGRA8Unorm, FormatInfo{
		BytesPerPixel: 4,
		BlockWidth:    1,
		BlockHeight:   1,
		Source:        PixelFormatBGRA8,
	})
	return ft
}

func (ft *FormatTable) Register(format gputypes.TextureFormat, info FormatInfo) {
	ft.mu.Lock()
	ft.formats[format] = info
	ft.mu.Unlock()
}

func (ft *FormatTable) Lookup(format gputypes.TextureFormat) (FormatInfo, error) {
	ft.mu.RLock()
	defer ft.mu.RUnlock()

	info, ok := ft.formats[format]
	if !ok {
		return FormatInfo{}, fmt.Errorf("texture format %v is not registered", format)
	}
	return info, nil
}
