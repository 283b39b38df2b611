// Package objectstore implements a model.Sink backed by an S3-compatible
// object store. Grounded on the teacher's minio connector
// (platform/ucl-core/internal/connector/minio/{s3_client.go,minio.go}):
// same minio-go client construction and the same real-client/local-fallback
// split, generalized here from "staging provider + sink endpoint" to a
// single push-destination Sink that buffers an incoming model.ByteStream
// and uploads it as one object.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/nucleus/resultpush/internal/model"
)

// Config configures one object-store destination.
type Config struct {
	EndpointURL     string
	Region          string
	UseSSL          bool
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// Store is the minimal object-store surface a Sink needs, split out so
// tests can supply an in-memory fake instead of a live MinIO/S3 endpoint.
type Store interface {
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// s3Store adapts the minio-go client to Store.
type s3Store struct {
	client *minio.Client
}

// NewStore builds a Store from cfg: a real MinIO/S3 client for an
// http(s):// endpoint, falling back to a local-filesystem store for a
// file:// endpoint or if client construction fails, mirroring the
// teacher's own real-client/local-fallback split.
func NewStore(cfg Config) (Store, error) {
	if strings.HasPrefix(cfg.EndpointURL, "http://") || strings.HasPrefix(cfg.EndpointURL, "https://") {
		store, err := newS3Store(cfg)
		if err == nil {
			return store, nil
		}
	}
	return newLocalStore(cfg.EndpointURL), nil
}

func newS3Store(cfg Config) (Store, error) {
	u, err := url.Parse(cfg.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("objectstore: invalid endpoint url: %w", err)
	}
	endpoint := u.Host
	if endpoint == "" {
		endpoint = cfg.EndpointURL
	}
	useSSL := cfg.UseSSL || u.Scheme == "https"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: creating minio client: %w", err)
	}
	return &s3Store{client: client}, nil
}

func (s *s3Store) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, bucket, key, reader, int64(len(data)), minio.PutObjectOptions{})
	return err
}

// localStore persists objects on disk, for a file:// endpoint or as a
// fallback when no live object store is reachable — dev and test runs
// without a MinIO/S3 endpoint still exercise the Sink contract end to end.
type localStore struct {
	root string
}

func newLocalStore(endpointURL string) *localStore {
	root := strings.TrimPrefix(endpointURL, "file://")
	if root == "" {
		root = filepath.Join(os.TempDir(), "resultpush-objectstore")
	}
	_ = os.MkdirAll(root, 0o755)
	return &localStore{root: root}
}

func (s *localStore) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath := filepath.Join(s.root, filepath.FromSlash(bucket), filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("objectstore: creating local bucket dir: %w", err)
	}
	return os.WriteFile(fullPath, data, 0o644)
}

// Sink builds a model.Sink that drains a rendered byte stream into one
// object per push, in bucket under the destination path handed to Consume.
// Consume checks ctx at every pull from bytes, same as the render package's
// producers, so a canceled push stops draining the byte stream promptly.
func Sink(format model.ResultType, bucket string, store Store) model.Sink {
	return model.Sink{
		Format: format,
		Consume: func(ctx context.Context, path string, _ []model.ColumnMeta, bytes model.ByteStream) error {
			var buf []byte
			for bytes.Next(ctx) {
				buf = append(buf, bytes.Value()...)
			}
			if err := bytes.Err(); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			return store.PutObject(ctx, bucket, path, buf)
		},
	}
}
