package service

import (
	"context"
	"image"
	"time"
)

// ImageLoaderInterface defines the contract for bounded remote image loading
type ImageLoaderInterface interface {
	Load(ctx context.Context, url string, timeout time.Duration) (image.Image, error)
	LoadBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, string, error)
}
