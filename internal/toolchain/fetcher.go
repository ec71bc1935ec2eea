package toolchain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vk/runforge/internal/ctxlog"
	"resty.dev/v3"
)

// defaultMaxRetries bounds how many times a failed download is retried
// before the build aborts.
const defaultMaxRetries = 4

// Fetcher downloads toolchain release artifacts over HTTP with exponential
// backoff and optional SHA-256 verification.
type Fetcher struct {
	client *resty.Client

	// InitialInterval overrides the first backoff delay. Zero keeps the
	// backoff library default.
	InitialInterval time.Duration
	// MaxRetries bounds retry attempts. Zero means defaultMaxRetries.
	MaxRetries uint64
}

// NewFetcher creates a Fetcher with a dedicated HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{client: resty.New()}
}

// Close releases the underlying HTTP client.
func (f *Fetcher) Close() error {
	return f.client.Close()
}

// Fetch downloads the artifact at url and returns its bytes. Server errors
// and transport failures are retried with exponential backoff; client
// errors (4xx) abort immediately. When checksum is non-empty the body must
// match the hex-encoded SHA-256, and a mismatch is never retried.
func (f *Fetcher) Fetch(ctx context.Context, url, checksum string) ([]byte, error) {
	logger := ctxlog.FromContext(ctx)

	var body []byte
	operation := func() error {
		res, err := f.client.R().SetContext(ctx).Get(url)
		if err != nil {
			logger.Warn("Toolchain download attempt failed.", "url", url, "error", err)
			return err
		}
		if res.IsError() {
			err := fmt.Errorf("download %s: unexpected status %d", url, res.StatusCode())
			if res.StatusCode() >= 400 && res.StatusCode() < 500 {
				return backoff.Permanent(err)
			}
			logger.Warn("Toolchain download attempt failed.", "url", url, "status", res.StatusCode())
			return err
		}
		body = res.Bytes()
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	if f.InitialInterval > 0 {
		bo.InitialInterval = f.InitialInterval
	}
	retries := f.MaxRetries
	if retries == 0 {
		retries = defaultMaxRetries
	}

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx)); err != nil {
		return nil, err
	}

	if checksum != "" {
		sum := sha256.Sum256(body)
		if got := hex.EncodeToString(sum[:]); got != checksum {
			return nil, fmt.Errorf("checksum mismatch for %s: got %s, want %s", url, got, checksum)
		}
	}

	logger.Debug("Toolchain artifact downloaded.", "url", url, "bytes", len(body))
	return body, nil
}
