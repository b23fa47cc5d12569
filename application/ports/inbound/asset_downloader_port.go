package inbound

import (
	"context"
	"doc-narrator-api/domain"
)

// AssetDownloaderPort fetches any missing model assets from a manifest,
// streaming percentage progress. Completed assets are never re-downloaded.
type AssetDownloaderPort interface {
	Download(ctx context.Context) (<-chan domain.ProgressEvent, error)
}
