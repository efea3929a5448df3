// Package fetcher downloads one subtitle from an ordered list of equivalent
// sources, falling back URL by URL, and persists the first non-empty result.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoViableSource is returned when every URL in a download group failed
var ErrNoViableSource = errors.New("no viable source")

// Subtitle files are small; anything bigger than this is not a subtitle
const maxSubtitleSize = 10 * 1024 * 1024 // 10MB

// Saver persists raw bytes under a filename
type Saver interface {
	Save(filename string, data []byte) error
}

// Artifact describes one successfully downloaded and persisted subtitle
type Artifact struct {
	Filename  string
	SizeBytes int64
	SourceURL string
}

// Fetcher downloads subtitle bytes over HTTP and hands them to a Saver
type Fetcher struct {
	httpClient *http.Client
	saver      Saver
	logger     *logrus.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(saver Saver, timeout time.Duration, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		saver:  saver,
		logger: logger,
	}
}

// DownloadFirst tries urls strictly in order and persists the first non-empty
// result under filename. An empty body counts as a failure of that URL. Each
// URL is attempted at most once; when all of them fail the error wraps
// ErrNoViableSource and nothing is persisted.
func (f *Fetcher) DownloadFirst(ctx context.Context, urls []string, filename string) (*Artifact, error) {
	var lastErr error

	for _, url := range urls {
		data, err := f.fetchOne(ctx, url)
		if err != nil {
			f.logger.WithError(err).WithField("url", url).Warn("Source failed, trying remaining URLs")
			lastErr = err
			continue
		}

		if err := f.saver.Save(filename, data); err != nil {
			return nil, fmt.Errorf("failed to save %s: %w", filename, err)
		}

		f.logger.WithFields(logrus.Fields{
			"filename":   filename,
			"size_bytes": len(data),
			"url":        url,
		}).Info("Subtitle downloaded")

		return &Artifact{
			Filename:  filename,
			SizeBytes: int64(len(data)),
			SourceURL: url,
		}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: last error: %v", ErrNoViableSource, lastErr)
	}
	return nil, ErrNoViableSource
}

// fetchOne fetches the bytes behind a single URL
func (f *Fetcher) fetchOne(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "subarr/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSubtitleSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("empty body from %s", url)
	}

	return data, nil
}
