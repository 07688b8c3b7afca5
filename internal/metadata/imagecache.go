package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ErrImageNotFound indicates the remote image does not exist. It is terminal
// and never retried.
var ErrImageNotFound = errors.New("image not found")

// ImageType selects which artwork slot a cached file belongs to.
type ImageType string

const (
	ImagePoster   ImageType = "poster"
	ImageBackdrop ImageType = "backdrop"
)

const imageRetries = 3 // additional attempts after the first failure

// ImageCache downloads artwork to deterministic on-disk paths and serves the
// cached file on subsequent calls.
type ImageCache struct {
	dir        string
	httpClient *http.Client
}

// ImageCacheOption configures an ImageCache.
type ImageCacheOption func(*ImageCache)

// WithImageHTTPClient sets a custom HTTP client (for testing).
func WithImageHTTPClient(hc *http.Client) ImageCacheOption {
	return func(c *ImageCache) {
		c.httpClient = hc
	}
}

// NewImageCache creates an image cache rooted at dir.
func NewImageCache(dir string, opts ...ImageCacheOption) *ImageCache {
	c := &ImageCache{
		dir: dir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the deterministic cache location for an image, keyed by
// image type, metadata GID, and root metadata GID.
func (c *ImageCache) Path(t ImageType, metadataGID, rootGID string) string {
	return filepath.Join(c.dir, rootGID, fmt.Sprintf("%s-%s.jpg", metadataGID, t))
}

// Get returns the cached file path for an image, downloading it first when
// absent. Transient download failures are retried up to 3 more times with
// linearly increasing backoff; a 404 response is terminal.
func (c *ImageCache) Get(ctx context.Context, t ImageType, metadataGID, rootGID, url string) (string, error) {
	dest := c.Path(t, metadataGID, rootGID)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	var lastErr error
	for attempt := 0; attempt <= imageRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		err := c.download(ctx, url, dest)
		if err == nil {
			return dest, nil
		}
		if errors.Is(err, ErrImageNotFound) || errors.Is(err, context.Canceled) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("download image after %d attempts: %w", imageRetries+1, lastErr)
}

func (c *ImageCache) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrImageNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image fetch: %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Write to a temp file and rename so partial downloads never surface.
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("finalize image: %w", err)
	}
	return nil
}
