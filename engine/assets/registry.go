package assets

import (
	"sync"

	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

// HeaderSize is how many leading bytes are handed to Decoder.Match.
const HeaderSize = 64

// DecoderRegistry holds the decoders consulted during format detection.
// Decoders are tried in registration order.
type DecoderRegistry struct {
	mu       sync.RWMutex
	decoders []Decoder
}

func NewDecoderRegistry(decoders ...Decoder) *DecoderRegistry {
	dr := &DecoderRegistry{}
	for _, d := range decoders {
		dr.Register(d)
	}
	return dr
}

func (dr *DecoderRegistry) Register(d Decoder) {
	dr.mu.Lock()
	dr.decoders = append(dr.decoders, d)
	dr.mu.Unlock()
}

// Detect returns the first decoder claiming the data.
func (dr *DecoderRegistry) Detect(data []byte) (Decoder, bool) {
	header := data
	if len(header) > HeaderSize {
		header = header[:HeaderSize]
	}

	dr.mu.RLock()
	defer dr.mu.RUnlock()

	for _, d := range dr.decoders {
		if d.Match(header) {
			return d, true
		}
	}
	return nil, false
}

// Names lists the registered decoders.
func (dr *DecoderRegistry) Names() []string {
	dr.mu.RLock()
	defer dr.mu.RUnlock()

	names := make([]string, 0, len(dr.decoders))
	for _, d := range dr.decoders {
		names = append(names, d.Name())
	}
	return names
}

// Decode runs d and converts the result to BGRA8.
func Decode(d Decoder, data []byte) (*metadata.DecodedImage, error) {
	img, err := d.Decode(data)
	if err != nil {
		return nil, err
	}
	return ToBGRA(img)
}
