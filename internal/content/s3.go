package content

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the slice of the S3 client the asset store uses. Tests provide
// a fake; production passes *s3.Client.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// AssetStore stores article assets (images, downloads) in an S3 bucket.
type AssetStore struct {
	client s3API
	bucket string
	prefix string
}

// NewAssetStore creates an asset store over the given bucket. The prefix
// namespaces keys (e.g. "assets/").
func NewAssetStore(client *s3.Client, bucket, prefix string) *AssetStore {
	return newAssetStore(client, bucket, prefix)
}

func newAssetStore(client s3API, bucket, prefix string) *AssetStore {
	return &AssetStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Put uploads an asset and returns its key. The key embeds a random id so
// re-uploads of the same filename never collide.
func (s *AssetStore) Put(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	id, err := randomID()
	if err != nil {
		return "", err
	}
	key := path.Join(s.prefix, id+"-"+path.Base(filename))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("content: uploading %s: %w", key, err)
	}
	return key, nil
}

// Get fetches an asset by key. The caller owns the returned reader.
func (s *AssetStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("content: fetching %s: %w", key, err)
	}

	contentType := ""
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	return out.Body, contentType, nil
}

func randomID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
