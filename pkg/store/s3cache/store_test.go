package s3cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockAPI) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

func (m *mockAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func keyIs(key string) interface{} {
	return mock.MatchedBy(func(in interface{}) bool {
		switch v := in.(type) {
		case *s3.GetObjectInput:
			return aws.ToString(v.Key) == key
		case *s3.PutObjectInput:
			return aws.ToString(v.Key) == key
		case *s3.DeleteObjectInput:
			return aws.ToString(v.Key) == key
		}
		return false
	})
}

func TestStore_Read(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	s, err := NewStore(api, "reports", "/documents/")
	require.NoError(t, err)

	modified := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	api.On("GetObject", ctx, keyIs("documents/trend_area_abc.pdf")).Return(&s3.GetObjectOutput{
		Body:         io.NopCloser(bytes.NewReader([]byte("%PDF"))),
		LastModified: aws.Time(modified),
	}, nil)
	api.On("GetObject", ctx, keyIs("documents/missing.pdf")).Return(nil, &types.NoSuchKey{})
	api.On("GetObject", ctx, keyIs("documents/broken.pdf")).Return(nil, errors.New("access denied"))

	blob, err := s.Read(ctx, "trend_area_abc.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), blob.Data)
	assert.Equal(t, modified, blob.ModifiedAt)

	_, err = s.Read(ctx, "missing.pdf")
	assert.ErrorIs(t, err, store.ErrBlobNotFound)

	_, err = s.Read(ctx, "broken.pdf")
	assert.ErrorContains(t, err, "access denied")
	api.AssertExpectations(t)
}

func TestStore_Write(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	s, err := NewStore(api, "reports", "documents")
	require.NoError(t, err)

	api.On("PutObject", ctx, keyIs("documents/weekly-matrix_area_abc.pdf")).Return(&s3.PutObjectOutput{}, nil)

	require.NoError(t, s.Write(ctx, "weekly-matrix_area_abc.pdf", []byte("%PDF")))
	api.AssertExpectations(t)
}

func TestStore_DeleteAll(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	s, err := NewStore(api, "reports", "documents")
	require.NoError(t, err)

	first := mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil && aws.ToString(in.Prefix) == "documents/"
	})
	second := mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool { return aws.ToString(in.ContinuationToken) == "next" })

	api.On("ListObjectsV2", ctx, first).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("documents/a.pdf")},
			{Key: aws.String("documents/readme.txt")},
			{Key: aws.String("documents/archive/invoice.pdf")},
		},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("next"),
	}, nil)
	api.On("ListObjectsV2", ctx, second).Return(&s3.ListObjectsV2Output{
		Contents:    []types.Object{{Key: aws.String("documents/b.pdf")}, {Key: aws.String("documents/c.pdf")}},
		IsTruncated: aws.Bool(false),
	}, nil)
	api.On("DeleteObject", ctx, keyIs("documents/a.pdf")).Return(&s3.DeleteObjectOutput{}, nil)
	api.On("DeleteObject", ctx, keyIs("documents/b.pdf")).Return(&s3.DeleteObjectOutput{}, nil)
	api.On("DeleteObject", ctx, keyIs("documents/c.pdf")).Return(nil, errors.New("throttled"))

	deleted, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	api.AssertExpectations(t)
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(nil, "bucket", "documents")
	assert.Error(t, err)
	_, err = NewStore(new(mockAPI), "", "documents")
	assert.Error(t, err)
}

func TestNewStore_RequiresPrefix(t *testing.T) {
	for _, prefix := range []string{"", "/", "//"} {
		_, err := NewStore(new(mockAPI), "reports", prefix)
		assert.ErrorContains(t, err, "prefix", "prefix %q", prefix)
	}
}
