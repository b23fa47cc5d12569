package outbound

import (
	"context"
	"io"
)

// DocumentExtractorPort wraps the document-to-text engine. Extraction may
// block for minutes on large documents; callers offload the call.
type DocumentExtractorPort interface {
	Extract(ctx context.Context, filename string, document io.Reader) (string, error)
}
