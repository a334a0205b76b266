package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeGray         = 3  // Uncompressed grayscale
	TGATypeRLE          = 10 // RLE compressed true-color
	TGATypeRLEGray      = 11 // RLE compressed grayscale
)

const (
	tgaHeaderSize  = 18
	tgaTopToBottom = 0x20 // Descriptor bit 5
)

// ErrTGATruncated is returned when pixel data ends early.
var ErrTGATruncated = errors.New("TGA data truncated")

// DecodeTGA decodes a TGA image. Grayscale images (8 bpp, types 3 and 11)
// decode to *image.Gray; true-color images (24/32 bpp, types 2 and 10)
// decode to *image.RGBA.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&tgaTopToBottom != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}

	var gray bool
	switch imageType {
	case TGATypeGray, TGATypeRLEGray:
		gray = true
		if bpp != 8 {
			return nil, fmt.Errorf("unsupported grayscale TGA bit depth %d (only 8 supported)", bpp)
		}
	case TGATypeUncompressed, TGATypeRLE:
		if bpp != 24 && bpp != 32 {
			return nil, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
		}
	default:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, ErrTGATruncated
	}

	d := tgaDecoder{
		data:          data[offset:],
		width:         width,
		height:        height,
		bytesPerPixel: bpp / 8,
		topToBottom:   topToBottom,
	}

	rect := image.Rect(0, 0, width, height)
	var set func(x, y int, px []byte)
	var img image.Image
	if gray {
		g := image.NewGray(rect)
		set = func(x, y int, px []byte) { g.SetGray(x, y, color.Gray{Y: px[0]}) }
		img = g
	} else {
		rgba := image.NewRGBA(rect)
		set = func(x, y int, px []byte) {
			a := uint8(255)
			if len(px) == 4 {
				a = px[3]
			}
			rgba.SetRGBA(x, y, color.RGBA{R: px[2], G: px[1], B: px[0], A: a})
		}
		img = rgba
	}

	var err error
	if imageType == TGATypeRLE || imageType == TGATypeRLEGray {
		err = d.decodeRLE(set)
	} else {
		err = d.decodeRaw(set)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

type tgaDecoder struct {
	data          []byte
	width, height int
	bytesPerPixel int
	topToBottom   bool
}

// position maps a pixel index in file order to image coordinates.
func (d *tgaDecoder) position(i int) (x, y int) {
	x = i % d.width
	y = i / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	return x, y
}

func (d *tgaDecoder) decodeRaw(set func(x, y int, px []byte)) error {
	count := d.width * d.height
	if len(d.data) < count*d.bytesPerPixel {
		return ErrTGATruncated
	}
	for i := range count {
		x, y := d.position(i)
		set(x, y, d.data[i*d.bytesPerPixel:(i+1)*d.bytesPerPixel])
	}
	return nil
}

func (d *tgaDecoder) decodeRLE(set func(x, y int, px []byte)) error {
	count := d.width * d.height
	pixel := 0
	pos := 0

	for pixel < count {
		if pos >= len(d.data) {
			return ErrTGATruncated
		}
		packet := d.data[pos]
		pos++
		run := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Repeat one pixel
			if pos+d.bytesPerPixel > len(d.data) {
				return ErrTGATruncated
			}
			px := d.data[pos : pos+d.bytesPerPixel]
			pos += d.bytesPerPixel
			for i := 0; i < run && pixel < count; i++ {
				x, y := d.position(pixel)
				set(x, y, px)
				pixel++
			}
			continue
		}

		// Literal pixels
		for i := 0; i < run && pixel < count; i++ {
			if pos+d.bytesPerPixel > len(d.data) {
				return ErrTGATruncated
			}
			x, y := d.position(pixel)
			set(x, y, d.data[pos:pos+d.bytesPerPixel])
			pos += d.bytesPerPixel
			pixel++
		}
	}
	return nil
}
