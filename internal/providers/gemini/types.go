package gemini

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by every remote call when no key is configured.
var ErrMissingAPIKey = errors.New("gemini: api key is not configured")

// Service is the content generation surface the editing gateway depends on.
type Service interface {
	GenerateContent(ctx context.Context, parts []Part) (*Response, error)
}

// Part is one piece of a multimodal request or response.
type Part struct {
	Text       string
	InlineData *Blob
}

// Blob carries decoded binary content.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Candidate is one generated answer.
type Candidate struct {
	Parts        []Part
	FinishReason string
}

// Response is a backend-neutral generateContent result.
type Response struct {
	Candidates []Candidate
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart builds an inline binary part.
func ImagePart(data []byte, mimeType string) Part {
	return Part{InlineData: &Blob{MIMEType: mimeType, Data: data}}
}

// APIError is a non-2xx answer from the service. Status carries the
// canonical code name such as NOT_FOUND or INTERNAL when the body has one.
type APIError struct {
	Code    int
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini status %d %s: %s", e.Code, e.Status, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("gemini status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gemini status %d", e.Code)
}
