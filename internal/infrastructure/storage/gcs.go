package storage

import (
	"bytes"
	"context"
	"path"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/go-account-core/pkg/helpers"
)

// GCSStore writes assets as objects under prefix in a bucket. GCS object
// writes are atomic on Close, which gives the same all-or-nothing
// visibility as LocalStore's rename.
type GCSStore struct {
	client *gcs.Client
	bucket string
	prefix string
}

func NewGCSStore(client *gcs.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *GCSStore) Put(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := helpers.UploadObject(ctx, s.client, s.bucket, path.Join(s.prefix, name), contentType, bytes.NewReader(data))
	return err
}
