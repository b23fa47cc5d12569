package outbound

import "context"

// TextCleanerPort wraps the language-model cleaning service. Clean refines a
// single bounded-length chunk; ListModels reports which models the backend
// has installed.
type TextCleanerPort interface {
	Clean(ctx context.Context, model string, chunk string) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}
