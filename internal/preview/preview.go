// Package preview renders downscaled copies of session images.
package preview

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	"photostudio/internal/domain"
)

// Thumbnail returns img scaled down to at most maxWidth pixels wide with the
// aspect ratio preserved. JPEG inputs stay JPEG; everything else becomes PNG.
// Images that already fit are returned unchanged.
func Thumbnail(img domain.Image, maxWidth int) (domain.Image, error) {
	if maxWidth <= 0 {
		return img, nil
	}
	src, err := imaging.Decode(bytes.NewReader(img.Data), imaging.AutoOrientation(true))
	if err != nil {
		return domain.Image{}, fmt.Errorf("preview: decode: %w", err)
	}
	if src.Bounds().Dx() <= maxWidth {
		return img, nil
	}

	scaled := imaging.Resize(src, maxWidth, 0, imaging.Lanczos)

	format, mimeType := imaging.PNG, "image/png"
	if img.MIMEType == "image/jpeg" {
		format, mimeType = imaging.JPEG, "image/jpeg"
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, format); err != nil {
		return domain.Image{}, fmt.Errorf("preview: encode: %w", err)
	}
	return domain.NewImage(buf.Bytes(), mimeType), nil
}
