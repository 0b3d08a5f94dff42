// Package acquisition turns uploaded or local files into in-memory images.
package acquisition

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"photostudio/internal/domain"
)

// ErrTooLarge is returned when the input exceeds the configured limit.
var ErrTooLarge = errors.New("acquisition: image exceeds size limit")

// FromReader reads at most limit bytes from r. The declared media type is
// passed through unchanged; it is only sniffed from content when empty or
// the generic application/octet-stream.
func FromReader(r io.Reader, declaredMIME string, limit int64) (domain.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return domain.Image{}, fmt.Errorf("acquisition: read image: %w", err)
	}
	if len(data) == 0 {
		return domain.Image{}, domain.ErrEmptyImage
	}
	if int64(len(data)) > limit {
		return domain.Image{}, ErrTooLarge
	}
	return domain.NewImage(data, resolveMIME(declaredMIME, data)), nil
}

// FromFile loads a local file, using its extension as the declared type.
func FromFile(path string, limit int64) (domain.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Image{}, fmt.Errorf("acquisition: open %s: %w", path, err)
	}
	defer f.Close()
	return FromReader(f, mime.TypeByExtension(strings.ToLower(filepath.Ext(path))), limit)
}

func resolveMIME(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		declared = mediaType
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(data).String()
}
