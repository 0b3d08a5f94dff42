package editing

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"photostudio/internal/domain"
	"photostudio/internal/infra"
	"photostudio/internal/providers/gemini"
)

// Options configures a Gateway.
type Options struct {
	// Limiter throttles outbound calls. Nil means unlimited.
	Limiter *rate.Limiter
	Logger  *infra.Logger
}

// Gateway turns an image plus instruction into a single call to the editing
// service and interprets the answer. It keeps no state between calls.
type Gateway struct {
	service gemini.Service
	limiter *rate.Limiter
	logger  *infra.Logger
}

// NewGateway wires a gateway over service.
func NewGateway(service gemini.Service, opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Gateway{service: service, limiter: opts.Limiter, logger: logger}
}

// LimiterPerMinute builds a limiter allowing n calls per minute, or nil when
// n is not positive.
func LimiterPerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}

// Submit validates the input, calls the service once and returns a terminal
// outcome. It never retries.
func (g *Gateway) Submit(ctx context.Context, image []byte, mimeType, instruction string) Outcome {
	if len(image) == 0 {
		return Failure(ErrorValidation, MsgEmptyImage)
	}
	if !domain.IsImageMIME(mimeType) {
		return Failure(ErrorValidation, MsgInvalidMIME)
	}
	if strings.TrimSpace(instruction) == "" {
		return Failure(ErrorValidation, MsgEmptyPrompt)
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return Classify(err)
		}
	}

	start := time.Now()
	resp, err := g.service.GenerateContent(ctx, []gemini.Part{
		gemini.ImagePart(image, strings.TrimSpace(mimeType)),
		gemini.TextPart(BuildInstruction(instruction)),
	})
	if err != nil {
		outcome := Classify(err)
		g.logger.Warn().
			Err(err).
			Str("kind", string(outcome.ErrKind)).
			Dur("elapsed", time.Since(start)).
			Msg("editing: service call failed")
		return outcome
	}

	outcome := Interpret(resp)
	g.logger.Debug().
		Str("outcome", outcome.Kind.String()).
		Dur("elapsed", time.Since(start)).
		Msg("editing: service call completed")
	return outcome
}

// Interpret converts a service response into an outcome: the first inline
// image wins, then any text is a refusal, otherwise there is no output.
func Interpret(resp *gemini.Response) Outcome {
	if resp == nil || len(resp.Candidates) == 0 {
		return Failure(ErrorNoOutput, MsgNoOutput)
	}
	parts := resp.Candidates[0].Parts
	for _, part := range parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mimeType := strings.TrimSpace(part.InlineData.MIMEType)
			if mimeType == "" {
				mimeType = domain.DefaultImageMIME
			}
			return Success(domain.NewImage(part.InlineData.Data, mimeType))
		}
	}

	var text strings.Builder
	for _, part := range parts {
		text.WriteString(part.Text)
	}
	if t := strings.TrimSpace(text.String()); t != "" {
		return Refusal(t)
	}
	return Failure(ErrorNoOutput, MsgNoOutput)
}
