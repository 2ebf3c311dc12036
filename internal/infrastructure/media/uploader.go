// Package media uploads user images to the hosted object store and hands
// back their public URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/videotube/account-service/internal/api/metrics"
)

const (
	ProviderMinio = "minio"
	ProviderS3    = "s3"
)

// Config selects and configures the backing store.
type Config struct {
	Provider  string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	// PublicURL is the base the returned URLs are built on. When empty it is
	// derived from the endpoint.
	PublicURL string
	UseSSL    bool
}

// objectStore is the narrow surface a backend has to provide.
type objectStore interface {
	put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	provider() string
}

// Uploader implements ports.MediaUploader.
type Uploader struct {
	store     objectStore
	bucket    string
	publicURL string
	log       zerolog.Logger
}

// New builds the uploader for cfg.Provider.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media: bucket is required")
	}

	var (
		store objectStore
		err   error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderMinio:
		store, err = newMinioStore(cfg)
	case ProviderS3:
		store, err = newS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("media: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return newUploader(store, cfg.Bucket, publicBase(cfg), log), nil
}

func newUploader(store objectStore, bucket, publicURL string, log zerolog.Logger) *Uploader {
	return &Uploader{
		store:     store,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
	}
}

// Upload stores the file at localPath and returns its public URL. When the
// upload fails the local file is removed.
func (u *Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	if localPath == "" {
		return "", errors.New("media: no file given")
	}

	start := time.Now()
	url, err := u.upload(ctx, localPath)
	metrics.MediaUploadDuration.WithLabelValues(u.store.provider()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues(u.store.provider(), "error").Inc()
		if rmErr := os.Remove(localPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			u.log.Warn().Err(rmErr).Str("path", localPath).Msg("failed to remove local file after upload error")
		}
		return "", err
	}

	metrics.MediaUploadsTotal.WithLabelValues(u.store.provider(), "ok").Inc()
	u.log.Debug().Str("url", url).Msg("media uploaded")
	return url, nil
}

func (u *Uploader) upload(ctx context.Context, localPath string) (string, error) {
	mtype, err := mimetype.DetectFile(localPath)
	if err != nil {
		return "", fmt.Errorf("media: detect type: %w", err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("media: open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("media: stat: %w", err)
	}
	if info.Size() == 0 {
		return "", errors.New("media: empty file")
	}

	key := uuid.NewString() + mtype.Extension()
	if err := u.store.put(ctx, key, mtype.String(), f, info.Size()); err != nil {
		return "", fmt.Errorf("media: put %s: %w", key, err)
	}
	return u.publicURL + "/" + u.bucket + "/" + key, nil
}

// publicBase derives the URL prefix objects are served from.
func publicBase(cfg Config) string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	if cfg.Endpoint != "" {
		return endpointURL(cfg)
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return "https://s3." + region + ".amazonaws.com"
}

// endpointURL returns the endpoint with a scheme, adding one from UseSSL
// when the configured value is a bare host:port.
func endpointURL(cfg Config) string {
	if strings.HasPrefix(cfg.Endpoint, "http://") || strings.HasPrefix(cfg.Endpoint, "https://") {
		return cfg.Endpoint
	}
	if cfg.UseSSL {
		return "https://" + cfg.Endpoint
	}
	return "http://" + cfg.Endpoint
}
