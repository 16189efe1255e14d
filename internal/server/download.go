package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDownloadTimeout is the default timeout for image downloads
	DefaultDownloadTimeout = 30 * time.Second
	// DefaultMaxImageSize is the default maximum image size (20MB)
	DefaultMaxImageSize = 20 * 1024 * 1024
)

// ErrDownload is returned when an image could not be fetched.
var ErrDownload = errors.New("image download failed")

// ImageDownloader fetches images over HTTP with a timeout and a size limit.
type ImageDownloader struct {
	client  *resty.Client
	timeout time.Duration
	maxSize int64
}

// NewImageDownloader creates a new ImageDownloader with default settings.
func NewImageDownloader() *ImageDownloader {
	return &ImageDownloader{
		client:  resty.New().SetDebug(false).SetTimeout(DefaultDownloadTimeout),
		timeout: DefaultDownloadTimeout,
		maxSize: DefaultMaxImageSize,
	}
}

// WithTimeout sets a custom timeout for downloads.
func (d *ImageDownloader) WithTimeout(timeout time.Duration) *ImageDownloader {
	if timeout > 0 {
		d.timeout = timeout
		d.client.SetTimeout(timeout)
	}
	return d
}

// WithMaxSize sets a custom maximum file size.
func (d *ImageDownloader) WithMaxSize(maxSize int64) *ImageDownloader {
	if maxSize > 0 {
		d.maxSize = maxSize
	}
	return d
}

// Download fetches the image at imageURL. Transport failures, non-2xx
// responses and oversized bodies are reported as ErrDownload.
func (d *ImageDownloader) Download(ctx context.Context, imageURL string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	log.Info().Str("url", imageURL).Msg("downloading image")

	res, err := d.client.R().
		SetContext(reqCtx).
		SetDoNotParseResponse(true).
		Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	body := res.RawBody()
	defer body.Close()

	if !res.IsSuccess() {
		return nil, fmt.Errorf("%w: GET %s returned status %d", ErrDownload, imageURL, res.StatusCode())
	}

	if res.RawResponse != nil && res.RawResponse.ContentLength > d.maxSize {
		return nil, fmt.Errorf("%w: image too large: %d bytes exceeds limit of %d bytes", ErrDownload, res.RawResponse.ContentLength, d.maxSize)
	}

	// LimitReader enforces the limit even if Content-Length is missing or wrong
	data, err := io.ReadAll(io.LimitReader(body, d.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image data: %v", ErrDownload, err)
	}
	if int64(len(data)) > d.maxSize {
		return nil, fmt.Errorf("%w: image too large: exceeds limit of %d bytes", ErrDownload, d.maxSize)
	}

	return data, nil
}
