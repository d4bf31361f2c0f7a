// Package vision provides page-image preprocessing for the OCR extractor:
// decoding scanned page images, downscaling them to a model-friendly size,
// and re-encoding as PNG for upload.
package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Image preprocessing errors.
var (
	ErrInvalidImage = errors.New("vision: invalid image data")
	ErrEmptyImage   = errors.New("vision: empty image data")
)

// DefaultMaxDimension is the longest edge, in pixels, sent to the vision
// model. Larger pages are downscaled; 2048 keeps table text legible while
// staying under typical model input limits.
const DefaultMaxDimension = 2048

// DecodeImage decodes image data from common formats (PNG, JPEG, GIF).
// This is a pure function with no side effects.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// ScaleToMaxDimension downscales img so its longest edge is at most maxDim
// pixels, preserving aspect ratio. Images already within bounds are
// returned unchanged. Uses CatmullRom scaling for quality.
func ScaleToMaxDimension(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	longest := width
	if height > longest {
		longest = height
	}
	if maxDim <= 0 || longest <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(longest)
	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// EncodePNG encodes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("vision: failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// PrepareForOCR decodes raw page-image bytes, downscales them to the
// default model input size, and returns PNG bytes ready for upload.
//
// Example:
//
//	pngData, err := vision.PrepareForOCR(rawImage)
func PrepareForOCR(data []byte) ([]byte, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	scaled := ScaleToMaxDimension(img, DefaultMaxDimension)
	return EncodePNG(scaled)
}
