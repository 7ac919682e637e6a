// =============================================================================
// B2B-WC Converter - Image Resizing
// =============================================================================

// Supplier originals are frequently 4000px camera exports; resizing them
// before upload keeps the product pages fast without touching the site's
// thumbnail pipeline.

package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder

	"github.com/nfnt/resize"
)

// ResizeImage re-encodes an image as JPEG, scaling it down to maxWidth when
// it is wider, preserving the aspect ratio (Lanczos3). Images at or under
// maxWidth are returned unchanged rather than re-encoded, so repeated runs
// do not degrade quality.
func ResizeImage(data []byte, maxWidth, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	width := img.Bounds().Dx()
	if maxWidth <= 0 || width <= maxWidth {
		return data, nil
	}

	ratio := float64(img.Bounds().Dy()) / float64(width)
	newHeight := uint(float64(maxWidth) * ratio)

	resized := resize.Resize(uint(maxWidth), newHeight, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}
