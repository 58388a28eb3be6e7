/*
Package storage talks to S3-compatible object storage.

The chat relay uses it as an archive target: history messages are written
as individual objects under a per-room key prefix.
*/
package storage

import (
	"context"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// ObjectStore defines the object operations the relay needs.
type ObjectStore interface {
	// Put uploads body under key with the given content type.
	Put(ctx context.Context, key string, contentType string, body []byte) error
}

// NewObjectStore returns the S3-compatible ObjectStore for cfg.
func NewObjectStore(ctx context.Context, cfg ServiceConfig) (ObjectStore, error) {
	return newS3Client(ctx, cfg)
}
