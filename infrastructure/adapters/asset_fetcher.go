package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"doc-narrator-api/application/ports/outbound"
)

type assetFetcher struct {
	logger outbound.LoggerPort
	client *http.Client
}

func NewAssetFetcher(logger outbound.LoggerPort) outbound.AssetFetcherPort {
	return &assetFetcher{
		logger: logger,
		client: &http.Client{},
	}
}

// Fetch opens a streaming GET of the asset, returning the body and the
// reported content length (-1 when unknown). The caller owns the body.
func (a *assetFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	res, err := a.client.Do(req)
	if err != nil {
		a.logger.ErrorWithFields(err, "Failed to start asset transfer", map[string]interface{}{
			"URL": url,
		})
		return nil, 0, err
	}

	if res.StatusCode != http.StatusOK {
		_ = res.Body.Close()
		return nil, 0, fmt.Errorf("asset transfer returned non-OK status code: %d", res.StatusCode)
	}

	return res.Body, res.ContentLength, nil
}
