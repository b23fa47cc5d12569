package outbound

import (
	"context"
	"io"
)

// AssetFetcherPort opens a streaming transfer of a remote asset. Size is the
// total byte count, or -1 when the server does not report one.
type AssetFetcherPort interface {
	Fetch(ctx context.Context, url string) (body io.ReadCloser, size int64, err error)
}
