package services

import (
	"context"
	"fmt"
	"io"
	"os"

	"doc-narrator-api/application/ports/inbound"
	"doc-narrator-api/application/ports/outbound"
	"doc-narrator-api/channel_utils"
	"doc-narrator-api/domain"
)

type assetDownloader struct {
	logger     outbound.LoggerPort
	workerPool outbound.TaskDispatcher
	fetcher    outbound.AssetFetcherPort
	modelsDir  string
	manifest   []domain.Asset
}

func NewAssetDownloader(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher,
	fetcher outbound.AssetFetcherPort, modelsDir string, manifest []domain.Asset) inbound.AssetDownloaderPort {
	return &assetDownloader{
		logger:     logger,
		workerPool: workerPool,
		fetcher:    fetcher,
		modelsDir:  modelsDir,
		manifest:   manifest,
	}
}

// Download fetches every manifest asset whose destination is missing. Each
// transfer lands in a temporary sibling and is renamed into place only on
// full success, so a crash or failure never leaves a partial file at the
// final path and a re-run redoes only the incomplete assets.
func (d *assetDownloader) Download(ctx context.Context) (<-chan domain.ProgressEvent, error) {
	emitter := newProgressEmitter()

	needed := make([]domain.Asset, 0, len(d.manifest))
	for _, asset := range d.manifest {
		if _, err := os.Stat(asset.Dest); err == nil {
			continue
		}
		needed = append(needed, asset)
	}

	if len(needed) == 0 {
		emitter.Done(domain.ProgressEvent{Message: "All model files already present."})
		return emitter.Events(), nil
	}

	if err := os.MkdirAll(d.modelsDir, 0o755); err != nil {
		return nil, err
	}

	eventChs := make([]<-chan domain.ProgressEvent, 0, len(needed))
	errChs := make([]<-chan error, 0, len(needed))
	for _, asset := range needed {
		asset := asset
		events := make(chan domain.ProgressEvent, 8)
		errs := make(chan error, 1)

		err := d.workerPool.Submit(func() {
			defer close(events)
			defer close(errs)
			if err := d.downloadOne(ctx, asset, events); err != nil {
				d.logger.ErrorWithFields(err, "asset download failed", map[string]interface{}{
					"asset": asset.Name,
				})
				errs <- err
			}
		})
		if err != nil {
			return nil, err
		}

		eventChs = append(eventChs, events)
		errChs = append(errChs, errs)
	}

	merged, err := channel_utils.MergeChannels(d.workerPool, eventChs...)
	if err != nil {
		return nil, err
	}
	mergedErrs, err := channel_utils.MergeChannels(d.workerPool, errChs...)
	if err != nil {
		return nil, err
	}

	err = d.workerPool.Submit(func() {
		for event := range merged {
			emitter.Emit(event)
		}
		if firstErr := channel_utils.FirstError(mergedErrs); firstErr != nil {
			emitter.Fail(firstErr, domain.ProgressEvent{})
			return
		}
		emitter.Done(domain.ProgressEvent{Message: "Model files downloaded successfully."})
	})
	if err != nil {
		return nil, err
	}

	return emitter.Events(), nil
}

func (d *assetDownloader) downloadOne(ctx context.Context, asset domain.Asset, events chan<- domain.ProgressEvent) error {
	body, size, err := d.fetcher.Fetch(ctx, asset.URL)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, asset.Name, err)
	}
	defer func() {
		_ = body.Close()
	}()

	tmpPath := asset.Dest + ".tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, asset.Name, err)
	}

	fail := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, asset.Name, cause)
	}

	events <- progressPercent(asset.Name, 0)
	lastPercent := 0

	buf := make([]byte, 32*1024)
	var written int64
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := tmp.Write(buf[:n]); writeErr != nil {
				return fail(writeErr)
			}
			written += int64(n)
			if size > 0 {
				percent := int(written * 100 / size)
				if percent > 100 {
					percent = 100
				}
				// Repeated identical percentages are not re-emitted.
				if percent != lastPercent {
					lastPercent = percent
					events <- progressPercent(asset.Name, percent)
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fail(readErr)
		}
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, asset.Name, err)
	}
	if err := os.Rename(tmpPath, asset.Dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, asset.Name, err)
	}

	events <- domain.ProgressEvent{Status: domain.StatusFileDone, File: asset.Name}
	return nil
}

func progressPercent(name string, percent int) domain.ProgressEvent {
	return domain.ProgressEvent{
		Status:  domain.StatusDownloading,
		File:    name,
		Percent: &percent,
	}
}
