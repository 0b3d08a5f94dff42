package domain

import (
	"encoding/base64"
	"strings"
	"time"
)

// DefaultImageMIME is assumed when the editing service omits a media type.
const DefaultImageMIME = "image/png"

// Image is an in-memory picture plus the reference a client can render
// directly. Images are treated as immutable once constructed.
type Image struct {
	Data       []byte
	MIMEType   string
	DisplayRef string
}

// NewImage builds an Image whose display reference is a data URL.
func NewImage(data []byte, mimeType string) Image {
	mimeType = strings.TrimSpace(mimeType)
	return Image{
		Data:       data,
		MIMEType:   mimeType,
		DisplayRef: DataURL(mimeType, data),
	}
}

// IsZero reports whether the image carries no bytes.
func (i Image) IsZero() bool {
	return len(i.Data) == 0
}

// IsImageMIME reports whether mimeType denotes an image media type.
func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// DataURL renders data as data:<mime>;base64,<payload>.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = DefaultImageMIME
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// EditResult is one entry of an edit history.
type EditResult struct {
	ID          string
	Image       Image
	Instruction string
	CreatedAt   time.Time
}

// Extension returns a file extension for a media type, including the dot.
func Extension(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/heic":
		return ".heic"
	case "image/heif":
		return ".heif"
	default:
		return ".png"
	}
}
