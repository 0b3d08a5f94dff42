package gemini

import (
	"context"
	"fmt"

	"photostudio/internal/infra"
)

// New selects a backend by name: rest, sdk or synthetic.
func New(ctx context.Context, backend string, opts Options) (Service, error) {
	switch backend {
	case "", infra.BackendREST:
		return NewClient(opts), nil
	case infra.BackendSDK:
		return NewSDKClient(ctx, opts)
	case infra.BackendSynthetic:
		return NewSyntheticClient(opts.Logger), nil
	default:
		return nil, fmt.Errorf("gemini: unknown backend %q", backend)
	}
}
