package s3cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/rs/zerolog"
)

const (
	DefaultRegion = "us-east-1"
	documentExt   = ".pdf"
	contentType   = "application/pdf"
)

// API is the subset of the S3 client the document cache needs.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Settings struct {
	Bucket  string
	Prefix  string
	Profile string
	Region  string
}

// Store keeps rendered documents as objects under a bucket prefix.
type Store struct {
	client API
	bucket string
	prefix string
}

func NewStore(client API, bucket, prefix string) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket is empty")
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return nil, fmt.Errorf("prefix is empty, documents must not share the bucket root")
	}
	return &Store{client: client, bucket: bucket, prefix: prefix}, nil
}

// NewFromSettings loads the shared AWS configuration for the profile and builds a client.
func NewFromSettings(ctx context.Context, settings Settings) (*Store, error) {
	region := settings.Region
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(region)}
	if settings.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(settings.Profile))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return NewStore(s3.NewFromConfig(awsCfg), settings.Bucket, settings.Prefix)
}

func (s *Store) Read(ctx context.Context, name string) (*store.Blob, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, store.ErrBlobNotFound
		}
		return nil, fmt.Errorf("get object %s: %w", s.key(name), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", s.key(name), err)
	}
	return &store.Blob{
		Name:       name,
		Data:       data,
		ModifiedAt: aws.ToTime(out.LastModified),
	}, nil
}

func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", s.key(name), err)
	}
	return nil
}

func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	logger := zerolog.Ctx(ctx)

	listPrefix := s.prefix + "/"

	deleted := 0
	var continuationToken *string
	for {
		resp, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(listPrefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return deleted, fmt.Errorf("list objects in %s: %w", s.bucket, err)
		}

		for _, obj := range resp.Contents {
			key := aws.ToString(obj.Key)
			if !isDocument(strings.TrimPrefix(key, listPrefix)) {
				continue
			}
			_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("failed to delete cached document")
				continue
			}
			deleted++
		}

		if !aws.ToBool(resp.IsTruncated) {
			break
		}
		continuationToken = resp.NextContinuationToken
	}
	return deleted, nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// isDocument matches the flat document names written by Write. Nested keys are left alone.
func isDocument(name string) bool {
	return name != "" && !strings.Contains(name, "/") && strings.HasSuffix(name, documentExt)
}
