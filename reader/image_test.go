package reader

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatal("ToPNG() output does not start with the PNG signature")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	return img
}

func rgbAt(img image.Image, x, y int) (uint32, uint32, uint32) {
	r, g, b, _ := img.At(x, y).RGBA()
	return r, g, b
}

func TestToPNGGray8(t *testing.T) {
	img := &PageImage{
		Name:             "Im1",
		Width:            2,
		Height:           2,
		ColorSpace:       "DeviceGray",
		BitsPerComponent: 8,
		Data:             []byte{0, 85, 170, 255},
	}

	data, err := img.ToPNG()
	if err != nil {
		t.Fatalf("ToPNG() error = %v", err)
	}
	decoded := decodePNG(t, data)

	if r, _, _ := rgbAt(decoded, 0, 0); r != 0 {
		t.Errorf("pixel (0,0) = %#x, want 0", r)
	}
	if r, _, _ := rgbAt(decoded, 1, 0); r != 85*257 {
		t.Errorf("pixel (1,0) = %#x, want %#x", r, 85*257)
	}
	if r, _, _ := rgbAt(decoded, 1, 1); r != 0xFFFF {
		t.Errorf("pixel (1,1) = %#x, want 0xFFFF", r)
	}
}

func TestToPNGBilevel(t *testing.T) {
	// 10101010: leftmost pixel set, then alternating.
	img := &PageImage{
		Name:             "Im2",
		Width:            8,
		Height:           1,
		ColorSpace:       "DeviceGray",
		BitsPerComponent: 1,
		Data:             []byte{0xAA},
	}

	data, err := img.ToPNG()
	if err != nil {
		t.Fatalf("ToPNG() error = %v", err)
	}
	decoded := decodePNG(t, data)

	if r, _, _ := rgbAt(decoded, 0, 0); r != 0xFFFF {
		t.Errorf("pixel (0,0) = %#x, want white", r)
	}
	if r, _, _ := rgbAt(decoded, 1, 0); r != 0 {
		t.Errorf("pixel (1,0) = %#x, want black", r)
	}
}

func TestToPNG4BitGray(t *testing.T) {
	img := &PageImage{
		Name:             "Im3",
		Width:            2,
		Height:           1,
		ColorSpace:       "DeviceGray",
		BitsPerComponent: 4,
		Data:             []byte{0xF0},
	}

	data, err := img.ToPNG()
	if err != nil {
		t.Fatalf("ToPNG() error = %v", err)
	}
	decoded := decodePNG(t, data)

	if r, _, _ := rgbAt(decoded, 0, 0); r != 0xFFFF {
		t.Errorf("pixel (0,0) = %#x, want white", r)
	}
	if r, _, _ := rgbAt(decoded, 1, 0); r != 0 {
		t.Errorf("pixel (1,0) = %#x, want black", r)
	}
}

func TestToPNGRGB(t *testing.T) {
	img := &PageImage{
		Name:             "Im4",
		Width:            2,
		Height:           1,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Data:             []byte{255, 0, 0, 0, 255, 0},
	}

	data, err := img.ToPNG()
	if err != nil {
		t.Fatalf("ToPNG() error = %v", err)
	}
	decoded := decodePNG(t, data)

	r, g, _ := rgbAt(decoded, 0, 0)
	if r != 0xFFFF || g != 0 {
		t.Errorf("pixel (0,0) = (%#x, %#x), want red", r, g)
	}
	r, g, _ = rgbAt(decoded, 1, 0)
	if r != 0 || g != 0xFFFF {
		t.Errorf("pixel (1,0) = (%#x, %#x), want green", r, g)
	}
}

func TestToPNGCMYK(t *testing.T) {
	img := &PageImage{
		Name:             "Im5",
		Width:            2,
		Height:           1,
		ColorSpace:       "DeviceCMYK",
		BitsPerComponent: 8,
		Data:             []byte{0, 0, 0, 0, 0, 0, 0, 255},
	}

	data, err := img.ToPNG()
	if err != nil {
		t.Fatalf("ToPNG() error = %v", err)
	}
	decoded := decodePNG(t, data)

	r, g, b := rgbAt(decoded, 0, 0)
	if r != 0xFFFF || g != 0xFFFF || b != 0xFFFF {
		t.Errorf("pixel (0,0) = (%#x, %#x, %#x), want white", r, g, b)
	}
	r, g, b = rgbAt(decoded, 1, 0)
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("pixel (1,0) = (%#x, %#x, %#x), want black", r, g, b)
	}
}

func TestToPNGShortData(t *testing.T) {
	tests := []struct {
		name string
		img  PageImage
	}{
		{"gray", PageImage{Width: 2, Height: 2, ColorSpace: "DeviceGray", BitsPerComponent: 8, Data: []byte{1, 2, 3}}},
		{"bilevel", PageImage{Width: 8, Height: 2, ColorSpace: "DeviceGray", BitsPerComponent: 1, Data: []byte{0xFF}}},
		{"rgb", PageImage{Width: 2, Height: 1, ColorSpace: "DeviceRGB", BitsPerComponent: 8, Data: []byte{1, 2, 3, 4, 5}}},
		{"cmyk", PageImage{Width: 1, Height: 1, ColorSpace: "DeviceCMYK", BitsPerComponent: 8, Data: []byte{1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.img.ToPNG(); err == nil {
				t.Error("ToPNG() error = nil, want short data error")
			}
		})
	}
}

func TestToPNGUnsupportedDepth(t *testing.T) {
	img := &PageImage{
		Width:            2,
		Height:           1,
		ColorSpace:       "DeviceGray",
		BitsPerComponent: 16,
		Data:             []byte{0, 0, 0, 0},
	}

	if _, err := img.ToPNG(); err == nil {
		t.Error("ToPNG() error = nil, want unsupported depth error")
	}
}

func TestJPEGPassthrough(t *testing.T) {
	img := &PageImage{
		Name:   "Im7",
		Width:  100,
		Height: 100,
		Filter: "DCTDecode",
		Data:   []byte{0xFF, 0xD8, 0xFF, 0xE0},
	}

	if !img.JPEG() {
		t.Error("JPEG() = false, want true for DCTDecode filter")
	}
	if _, err := img.ToPNG(); err == nil {
		t.Error("ToPNG() error = nil, want refusal for JPEG payload")
	}
}

func TestStreamFilter(t *testing.T) {
	xref := &pdfmodel.XRefTable{}

	tests := []struct {
		name string
		dict types.Dict
		want string
	}{
		{"single name", types.Dict{"Filter": types.Name("DCTDecode")}, "DCTDecode"},
		{
			"pipeline takes last",
			types.Dict{"Filter": types.Array{types.Name("FlateDecode"), types.Name("DCTDecode")}},
			"DCTDecode",
		},
		{"no filter", types.Dict{}, ""},
		{"empty pipeline", types.Dict{"Filter": types.Array{}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := streamFilter(xref, tt.dict); got != tt.want {
				t.Errorf("streamFilter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColorSpaceName(t *testing.T) {
	xref := &pdfmodel.XRefTable{}

	tests := []struct {
		name string
		dict types.Dict
		want string
	}{
		{"missing defaults to gray", types.Dict{}, "DeviceGray"},
		{"plain name", types.Dict{"ColorSpace": types.Name("DeviceRGB")}, "DeviceRGB"},
		{
			"icc based",
			types.Dict{"ColorSpace": types.Array{types.Name("ICCBased")}},
			"ICCBased",
		},
		{
			"indexed reports base",
			types.Dict{"ColorSpace": types.Array{
				types.Name("Indexed"), types.Name("DeviceRGB"), types.Integer(255),
			}},
			"DeviceRGB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := colorSpaceName(xref, tt.dict); got != tt.want {
				t.Errorf("colorSpaceName() = %q, want %q", got, tt.want)
			}
		})
	}
}
