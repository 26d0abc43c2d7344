package service

import (
	"context"
	"io"
)

// Uploader stores profile pictures and item images, returning a durable
// reference URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
}
