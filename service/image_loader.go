package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	// Register decoders for the formats product photos and logos arrive in
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"offert-mockup-me/models"
)

// DefaultLoadTimeout bounds every remote image fetch used for compositing
// or document embedding. Once it fires the image is abandoned; the
// surrounding operation decides whether that is fatal.
const DefaultLoadTimeout = 5 * time.Second

// ImageLoader fetches and decodes remote images with a bounded wait.
// Implements ImageLoaderInterface.
type ImageLoader struct {
	client *http.Client
}

// NewImageLoader creates a new ImageLoader instance
func NewImageLoader() *ImageLoader {
	return &ImageLoader{
		// The per-call context carries the real deadline; the client
		// timeout is only a backstop against leaked connections.
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Ensure ImageLoader implements ImageLoaderInterface
var _ ImageLoaderInterface = (*ImageLoader)(nil)

// LoadBytes fetches an image URL within the given timeout and returns the
// raw bytes plus the detected format ("png", "jpeg", ...). A response that
// is not decodable as an image fails with LoadError rather than silently
// producing a blank region downstream.
func (l *ImageLoader) LoadBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, string, error) {
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", &models.LoadError{URL: url, Err: err}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, "", &models.TimeoutError{URL: url, Timeout: timeout}
		}
		return nil, "", &models.LoadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &models.LoadError{URL: url, Err: fmt.Errorf("image endpoint returned status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, "", &models.TimeoutError{URL: url, Timeout: timeout}
		}
		return nil, "", &models.LoadError{URL: url, Err: err}
	}

	// Validate that the payload really is an image before handing it on
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", &models.LoadError{URL: url, Err: fmt.Errorf("failed to decode image: %w", err)}
	}

	return data, format, nil
}

// Load fetches and fully decodes a remote image within the given timeout
func (l *ImageLoader) Load(ctx context.Context, url string, timeout time.Duration) (image.Image, error) {
	data, _, err := l.LoadBytes(ctx, url, timeout)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &models.LoadError{URL: url, Err: fmt.Errorf("failed to decode image: %w", err)}
	}
	return img, nil
}
