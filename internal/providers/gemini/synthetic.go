package gemini

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"photostudio/internal/infra"
)

// SyntheticClient edits images locally with a deterministic adjustment chosen
// from the instruction text. It needs no credentials and is meant for local
// development and demos.
type SyntheticClient struct {
	logger *infra.Logger
}

// NewSyntheticClient returns a local stand-in for the remote service.
func NewSyntheticClient(logger *infra.Logger) *SyntheticClient {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &SyntheticClient{logger: logger}
}

// GenerateContent applies an adjustment to the first inline image using the
// concatenated text parts as seed. Requests without an image get a text-only
// answer, which the gateway surfaces as a refusal.
func (c *SyntheticClient) GenerateContent(ctx context.Context, parts []Part) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		source *Blob
		prompt strings.Builder
	)
	for _, p := range parts {
		if p.InlineData != nil && source == nil {
			source = p.InlineData
		}
		if p.Text != "" {
			prompt.WriteString(p.Text)
		}
	}
	if source == nil {
		return &Response{Candidates: []Candidate{{
			Parts:        []Part{TextPart("I need an image to edit.")},
			FinishReason: "STOP",
		}}}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(source.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("synthetic: decode source image: %w", err)
	}

	seed := deterministicSeed(prompt.String())
	edited := applyAdjustment(img, seed)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, edited, imaging.PNG); err != nil {
		return nil, fmt.Errorf("synthetic: encode result: %w", err)
	}

	c.logger.Debug().
		Uint64("seed", seed).
		Int("bytes", buf.Len()).
		Msg("gemini: generated synthetic edit")

	return &Response{Candidates: []Candidate{{
		Parts:        []Part{ImagePart(buf.Bytes(), "image/png")},
		FinishReason: "STOP",
	}}}, nil
}

func applyAdjustment(img image.Image, seed uint64) image.Image {
	switch seed % 6 {
	case 0:
		return imaging.Grayscale(img)
	case 1:
		return imaging.AdjustSaturation(img, 40)
	case 2:
		return imaging.AdjustContrast(img, 25)
	case 3:
		return imaging.AdjustBrightness(img, 15)
	case 4:
		return imaging.AdjustGamma(img, 0.8)
	default:
		return imaging.Sharpen(img, 1.5)
	}
}

func deterministicSeed(text string) uint64 {
	sum := sha256.Sum256([]byte(text))
	return binary.BigEndian.Uint64(sum[:8])
}

var _ Service = (*SyntheticClient)(nil)
