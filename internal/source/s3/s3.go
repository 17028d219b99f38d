// Package s3 implements source.Source over an S3 bucket prefix.
//
// Credentials and region come from the default AWS credential chain; the
// pipeline does not create buckets or manage access, it only lists and reads
// objects under an already-provisioned prefix.
package s3

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"lakeetl/internal/source"
)

// Source reads raw files under s3://bucket/prefix.
type Source struct {
	client s3iface.S3API
	bucket string
	prefix string
}

var _ source.Source = (*Source)(nil)

// New returns a Source over the given bucket and key prefix.
func New(client s3iface.S3API, bucket, prefix string) *Source {
	return &Source{client: client, bucket: bucket, prefix: strings.TrimSuffix(prefix, "/")}
}

// Glob lists all keys under the prefix and matches them against pattern with
// path.Match semantics (one * per path segment, same as the local source).
func (s *Source) Glob(ctx context.Context, pattern string) ([]string, error) {
	listPrefix := s.prefix
	// Keys are listed from the first fixed pattern segment to keep the
	// listing bounded; song_data/*/... lists under <prefix>/song_data/.
	if i := strings.IndexAny(pattern, "*?["); i > 0 {
		if j := strings.LastIndexByte(pattern[:i], '/'); j > 0 {
			listPrefix = s.key(pattern[:j])
		}
	}

	var names []string
	err := s.client.ListObjectsV2PagesWithContext(ctx, &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(listPrefix + "/"),
	}, func(page *awss3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.StringValue(obj.Key), s.prefixSlash())
			if ok, _ := path.Match(pattern, name); ok {
				names = append(names, name)
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list s3://%s/%s: %v: %w", s.bucket, listPrefix, err, source.ErrUnavailable)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("glob %q under s3://%s/%s matched no objects: %w",
			pattern, s.bucket, s.prefix, source.ErrUnavailable)
	}
	sort.Strings(names)
	return names, nil
}

// Open streams one object previously returned by Glob.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObjectWithContext(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key(name), err)
	}
	return out.Body, nil
}

func (s *Source) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *Source) prefixSlash() string {
	if s.prefix == "" {
		return ""
	}
	return s.prefix + "/"
}
