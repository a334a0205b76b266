// Package texture decodes heightmap images.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for image extensions Decode does not handle.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// IsImage reports whether name has an extension Decode understands.
func IsImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".tga":
		return true
	}
	return false
}

// Decode decodes PNG or TGA data, choosing the format from name's extension.
func Decode(data []byte, name string) (image.Image, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".png":
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding PNG: %w", err)
		}
		return img, nil
	case ".tga":
		return DecodeTGA(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
