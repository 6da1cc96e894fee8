package usecase

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxImageDimension = 1200
	jpegQuality       = 80
)

// compressImage decodes a jpg, png or webp and re-encodes it as JPEG, scaled
// down so neither side exceeds maxImageDimension.
func compressImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxImageDimension || h > maxImageDimension {
		if w >= h {
			h = h * maxImageDimension / w
			w = maxImageDimension
		} else {
			w = w * maxImageDimension / h
			h = maxImageDimension
		}
	}

	// Draw onto a white RGBA canvas so transparent pixels don't turn black.
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
