package metadata

import "testing"

func TestDecodedImageValidate(t *testing.T) {
	tests := []struct {
		name    string
		img     DecodedImage
		wantErr bool
	}{
		{name: "ok", img: DecodedImage{Width: 2, Height: 2, Pixels: make([]uint8, 16)}},
		{name: "zero width", img: DecodedImage{Width: 0, Height: 2, Pixels: nil}, wantErr: true},
		{name: "short buffer", img: DecodedImage{Width: 2, Height: 2, Pixels: make([]uint8, 15)}, wantErr: true},
		{name: "long buffer", img: DecodedImage{Width: 2, Height: 2, Pixels: make([]uint8, 17)}, wantErr: true},
		{name: "unknown format", img: DecodedImage{Width: 1, Height: 1, Format: PixelFormat(9), Pixels: make([]uint8, 4)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.img.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodedImageHasTransparency(t *testing.T) {
	opaque := DecodedImage{Width: 1, Height: 2, Pixels: []uint8{1, 2, 3, 255, 4, 5, 6, 255}}
	if opaque.HasTransparency() {
		t.Error("opaque image reported transparency")
	}
	opaque.Pixels[7] = 10
	if !opaque.HasTransparency() {
		t.Error("translucent pixel not detected")
	}
}
