// Package objstore is the small blob-placement seam under the parquet sink:
// put a finished object at a key, delete everything under a prefix. Two
// implementations cover a local directory tree and an S3 prefix, so the same
// encoder serves both sink roots.
package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Store places finished objects and clears prior output.
type Store interface {
	Put(ctx context.Context, key string, body []byte) error
	// DeletePrefix removes every object under prefix. Missing prefixes are
	// not an error; overwrite semantics call this unconditionally.
	DeletePrefix(ctx context.Context, prefix string) error
}

// FS is a Store over a local directory.
type FS struct {
	root string
}

var _ Store = (*FS)(nil)

func NewFS(root string) *FS { return &FS{root: root} }

func (f *FS) Put(_ context.Context, key string, body []byte) error {
	path := filepath.Join(f.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", key, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (f *FS) DeletePrefix(_ context.Context, prefix string) error {
	path := filepath.Join(f.root, filepath.FromSlash(prefix))
	if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", prefix, err)
	}
	return nil
}

// List returns all keys under prefix, mainly for tests and verification.
func (f *FS) List(prefix string) ([]string, error) {
	var keys []string
	root := filepath.Join(f.root, filepath.FromSlash(prefix))
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return keys, err
}

// S3 is a Store over s3://bucket/prefix.
type S3 struct {
	client s3iface.S3API
	bucket string
	prefix string
}

var _ Store = (*S3)(nil)

func NewS3(client s3iface.S3API, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: strings.TrimSuffix(prefix, "/")}
}

func (s *S3) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObjectWithContext(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, s.key(key), err)
	}
	return nil
}

func (s *S3) DeletePrefix(ctx context.Context, prefix string) error {
	input := &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix) + "/"),
	}
	var delErr error
	err := s.client.ListObjectsV2PagesWithContext(ctx, input, func(page *awss3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			if _, err := s.client.DeleteObjectWithContext(ctx, &awss3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			}); err != nil {
				delErr = fmt.Errorf("delete s3://%s/%s: %w", s.bucket, aws.StringValue(obj.Key), err)
				return false
			}
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("list s3://%s/%s: %w", s.bucket, s.key(prefix), err)
	}
	return delErr
}

func (s *S3) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + "/" + k
}
