package reader

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PageImage is a raster image extracted from a page. Data holds decoded
// pixel rows for most filters; JPEG streams pass through undecoded, since
// OCR engines consume JPEG directly.
type PageImage struct {
	Name             string // object name, e.g. "Im3"
	Width            int
	Height           int
	ColorSpace       string // DeviceGray, DeviceRGB, DeviceCMYK, ...
	BitsPerComponent int
	Data             []byte
	Filter           string // final filter of the stream's decode pipeline
}

// JPEG reports whether Data is a raw JPEG payload rather than decoded
// pixel rows.
func (img *PageImage) JPEG() bool {
	return img.Filter == "DCTDecode"
}

// PageImages extracts the raster images referenced by a page. Streams
// that cannot be decoded are skipped rather than failing the page.
func (d *Document) PageImages(pageNr int) ([]PageImage, error) {
	if pageNr < 1 || pageNr > d.ctx.PageCount {
		return nil, fmt.Errorf("page %d out of range [1, %d]", pageNr, d.ctx.PageCount)
	}
	if d.ctx.Optimize == nil {
		return nil, nil
	}

	var images []PageImage
	for _, objNr := range pdfcpu.ImageObjNrs(d.ctx, pageNr) {
		entry, found := d.ctx.Table[objNr]
		if !found || entry.Free || entry.Object == nil {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		img, err := d.imageFromStream(objNr, sd)
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

// imageFromStream builds a PageImage from an image XObject stream.
func (d *Document) imageFromStream(objNr int, sd types.StreamDict) (PageImage, error) {
	xref := d.ctx.XRefTable

	width := dictInt(xref, sd.Dict, "Width")
	height := dictInt(xref, sd.Dict, "Height")
	if width <= 0 || height <= 0 {
		return PageImage{}, fmt.Errorf("image object %d has no dimensions", objNr)
	}

	bpc := dictInt(xref, sd.Dict, "BitsPerComponent")
	if bpc == 0 {
		bpc = 8
	}

	img := PageImage{
		Name:             fmt.Sprintf("Im%d", objNr),
		Width:            width,
		Height:           height,
		ColorSpace:       colorSpaceName(xref, sd.Dict),
		BitsPerComponent: bpc,
		Filter:           streamFilter(xref, sd.Dict),
	}

	switch img.Filter {
	case "DCTDecode":
		img.Data = sd.Raw
	case "CCITTFaxDecode":
		data, err := decodeCCITT(xref, sd)
		if err != nil {
			return PageImage{}, fmt.Errorf("failed to decode CCITT image %d: %w", objNr, err)
		}
		img.Data = data
		img.BitsPerComponent = 1
	default:
		if err := sd.Decode(); err != nil {
			return PageImage{}, fmt.Errorf("failed to decode image %d: %w", objNr, err)
		}
		img.Data = sd.Content
	}
	return img, nil
}

// colorSpaceName resolves the ColorSpace entry of an image dictionary to
// a plain name. Indexed spaces report their base space, since the decoded
// data of interest is the palette lookups' target.
func colorSpaceName(xref *pdfmodel.XRefTable, dict types.Dict) string {
	obj, found := dict.Find("ColorSpace")
	if !found {
		return "DeviceGray"
	}
	return resolveColorSpace(xref, obj)
}

func resolveColorSpace(xref *pdfmodel.XRefTable, obj types.Object) string {
	resolved, err := xref.Dereference(obj)
	if err != nil {
		return "DeviceGray"
	}
	switch cs := resolved.(type) {
	case types.Name:
		return string(cs)
	case types.Array:
		if len(cs) == 0 {
			return "DeviceGray"
		}
		name, ok := cs[0].(types.Name)
		if !ok {
			return "DeviceGray"
		}
		if string(name) == "Indexed" && len(cs) > 1 {
			return resolveColorSpace(xref, cs[1])
		}
		return string(name)
	}
	return "DeviceGray"
}

// streamFilter returns the image format filter of a stream: the single
// Filter name, or the last entry of a pipeline array. Decoding applies
// pipeline entries left to right, so the last one is the image codec.
func streamFilter(xref *pdfmodel.XRefTable, dict types.Dict) string {
	obj, found := dict.Find("Filter")
	if !found {
		return ""
	}
	resolved, err := xref.Dereference(obj)
	if err != nil {
		return ""
	}
	switch f := resolved.(type) {
	case types.Name:
		return string(f)
	case types.Array:
		if len(f) == 0 {
			return ""
		}
		if name, ok := f[len(f)-1].(types.Name); ok {
			return string(name)
		}
	}
	return ""
}

// ToPNG encodes the decoded pixel data as PNG. JPEG payloads are already
// in a format OCR engines accept and are not converted.
func (img *PageImage) ToPNG() ([]byte, error) {
	if img.JPEG() {
		return nil, fmt.Errorf("image %s is a JPEG payload, use Data directly", img.Name)
	}

	var goImg image.Image
	var err error
	switch img.ColorSpace {
	case "DeviceRGB", "CalRGB":
		goImg, err = img.rgbImage()
	case "DeviceCMYK":
		goImg, err = img.cmykImage()
	default:
		goImg, err = img.grayImage()
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, goImg); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (img *PageImage) grayImage() (*image.Gray, error) {
	switch img.BitsPerComponent {
	case 1:
		return img.grayFrom1Bit()
	case 4:
		return img.grayFrom4Bit()
	case 8:
		want := img.Width * img.Height
		if len(img.Data) < want {
			return nil, fmt.Errorf("short gray data: got %d, want %d", len(img.Data), want)
		}
		goImg := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
		copy(goImg.Pix, img.Data[:want])
		return goImg, nil
	default:
		return nil, fmt.Errorf("unsupported bits per component: %d", img.BitsPerComponent)
	}
}

// grayFrom1Bit expands bilevel rows, MSB first, zero bits black.
func (img *PageImage) grayFrom1Bit() (*image.Gray, error) {
	stride := (img.Width + 7) / 8
	want := stride * img.Height
	if len(img.Data) < want {
		return nil, fmt.Errorf("short bilevel data: got %d, want %d", len(img.Data), want)
	}

	goImg := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		row := y * stride
		for x := 0; x < img.Width; x++ {
			bit := (img.Data[row+x/8] >> (7 - x%8)) & 1
			if bit == 1 {
				goImg.Pix[y*img.Width+x] = 255
			}
		}
	}
	return goImg, nil
}

// grayFrom4Bit expands two-pixel bytes, high nibble first, scaling 0..15
// to 0..255.
func (img *PageImage) grayFrom4Bit() (*image.Gray, error) {
	stride := (img.Width + 1) / 2
	want := stride * img.Height
	if len(img.Data) < want {
		return nil, fmt.Errorf("short 4-bit gray data: got %d, want %d", len(img.Data), want)
	}

	goImg := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		row := y * stride
		for x := 0; x < img.Width; x++ {
			nibble := img.Data[row+x/2]
			if x%2 == 0 {
				nibble >>= 4
			}
			goImg.Pix[y*img.Width+x] = (nibble & 0x0F) * 17
		}
	}
	return goImg, nil
}

func (img *PageImage) rgbImage() (*image.RGBA, error) {
	if img.BitsPerComponent != 8 {
		return nil, fmt.Errorf("unsupported bits per component for RGB: %d", img.BitsPerComponent)
	}
	want := img.Width * img.Height * 3
	if len(img.Data) < want {
		return nil, fmt.Errorf("short RGB data: got %d, want %d", len(img.Data), want)
	}

	goImg := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for i := 0; i < img.Width*img.Height; i++ {
		goImg.Pix[i*4+0] = img.Data[i*3+0]
		goImg.Pix[i*4+1] = img.Data[i*3+1]
		goImg.Pix[i*4+2] = img.Data[i*3+2]
		goImg.Pix[i*4+3] = 255
	}
	return goImg, nil
}

func (img *PageImage) cmykImage() (*image.RGBA, error) {
	if img.BitsPerComponent != 8 {
		return nil, fmt.Errorf("unsupported bits per component for CMYK: %d", img.BitsPerComponent)
	}
	want := img.Width * img.Height * 4
	if len(img.Data) < want {
		return nil, fmt.Errorf("short CMYK data: got %d, want %d", len(img.Data), want)
	}

	goImg := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for i := 0; i < img.Width*img.Height; i++ {
		r, g, b := color.CMYKToRGB(img.Data[i*4+0], img.Data[i*4+1], img.Data[i*4+2], img.Data[i*4+3])
		goImg.Pix[i*4+0] = r
		goImg.Pix[i*4+1] = g
		goImg.Pix[i*4+2] = b
		goImg.Pix[i*4+3] = 255
	}
	return goImg, nil
}
