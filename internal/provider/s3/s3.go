// Package s3 stores dataset entries in an S3-compatible bucket through minio-go.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/dataset-ingest/internal/config"
	"github.com/Chapsvision-dev/dataset-ingest/internal/provider"
)

// objectAPI is the subset of *minio.Client the provider uses.
type objectAPI interface {
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

type S3Provider struct {
	client objectAPI
	bucket string
	region string
}

var _ provider.Provider = (*S3Provider)(nil)

func init() {
	provider.Register(config.SinkS3, func(cfg any) (provider.Provider, error) {
		c, ok := cfg.(config.Config)
		if !ok {
			return nil, fmt.Errorf("s3: invalid config type")
		}
		client, err := newClient(c.S3)
		if err != nil {
			return nil, err
		}
		return &S3Provider{client: client, bucket: c.S3.Bucket, region: c.S3.Region}, nil
	})
}

// newClient accepts endpoints with or without a scheme; an explicit scheme wins over UseSSL.
func newClient(c config.S3Config) (*minio.Client, error) {
	endpoint, secure := splitEndpoint(c.Endpoint, c.UseSSL)
	if endpoint == "" {
		return nil, &config.MissingError{Key: "S3_ENDPOINT"}
	}
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: secure,
		Region: c.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: connect: %w", err)
	}
	return cl, nil
}

func splitEndpoint(raw string, useSSL bool) (string, bool) {
	ep := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(ep, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(ep, "https://"), "/"), true
	case strings.HasPrefix(ep, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(ep, "http://"), "/"), false
	}
	return strings.TrimSuffix(strings.TrimPrefix(ep, "//"), "/"), useSSL
}

func (p *S3Provider) Name() string      { return "s3" }
func (p *S3Provider) Container() string { return p.bucket }

// EnsureContainer creates the bucket; an existing bucket counts as success.
func (p *S3Provider) EnsureContainer(ctx context.Context) error {
	err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region})
	switch {
	case err == nil:
		log.Info().Str("action", "s3_bucket").Str("bucket", p.bucket).Msg("created bucket")
		return nil
	case isAlreadyExists(err):
		log.Info().Str("action", "s3_bucket").Str("bucket", p.bucket).Msg("using existing bucket")
		return nil
	default:
		return err
	}
}

// Put writes data under key, replacing any existing object.
func (p *S3Provider) Put(ctx context.Context, key string, data []byte) error {
	key = strings.TrimPrefix(key, "/")
	start := time.Now()
	_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return err
	}
	log.Info().Str("action", "s3_upload").Str("bucket", p.bucket).Str("key", key).
		Str("size", humanize.IBytes(uint64(len(data)))).Dur("elapsed_ms", time.Since(start)).Msg("upload OK")
	return nil
}

// List walks the whole bucket recursively.
func (p *S3Provider) List(ctx context.Context) ([]provider.Object, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out []provider.Object
	for obj := range p.client.ListObjects(ctx, p.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, provider.Object{Key: obj.Key, Size: obj.Size})
	}
	return out, nil
}

func isAlreadyExists(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
		return true
	}
	return false
}
