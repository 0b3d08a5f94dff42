package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"photostudio/internal/infra"
)

// SDKClient routes requests through the official google.golang.org/genai
// client instead of hand-built REST calls.
type SDKClient struct {
	client *genai.Client
	model  string
	logger *infra.Logger
}

// NewSDKClient builds an SDK-backed service. Without an API key the client
// is still returned and every call fails with ErrMissingAPIKey.
func NewSDKClient(ctx context.Context, opts Options) (*SDKClient, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	out := &SDKClient{model: model, logger: logger}
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return out, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create sdk client: %w", err)
	}
	out.client = client
	return out, nil
}

// Model returns the configured model identifier.
func (c *SDKClient) Model() string {
	return c.model
}

// GenerateContent sends parts as a single user turn.
func (c *SDKClient) GenerateContent(ctx context.Context, parts []Part) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.client == nil {
		return nil, ErrMissingAPIKey
	}

	sdkParts := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.InlineData != nil {
			sdkParts = append(sdkParts, genai.NewPartFromBytes(p.InlineData.Data, p.InlineData.MIMEType))
		}
		if p.Text != "" {
			sdkParts = append(sdkParts, genai.NewPartFromText(p.Text))
		}
	}
	contents := []*genai.Content{genai.NewContentFromParts(sdkParts, genai.RoleUser)}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, err
	}

	resp := &Response{}
	for _, candidate := range result.Candidates {
		if candidate == nil {
			continue
		}
		out := Candidate{FinishReason: string(candidate.FinishReason)}
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part == nil {
					continue
				}
				converted := Part{Text: part.Text}
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					converted.InlineData = &Blob{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data}
				}
				out.Parts = append(out.Parts, converted)
			}
		}
		resp.Candidates = append(resp.Candidates, out)
	}

	c.logger.Debug().
		Str("model", c.model).
		Int("candidates", len(resp.Candidates)).
		Msg("gemini: sdk generateContent completed")

	return resp, nil
}

var _ Service = (*SDKClient)(nil)
