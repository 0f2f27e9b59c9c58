package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/Chapsvision-dev/dataset-ingest/internal/config"
	"github.com/Chapsvision-dev/dataset-ingest/internal/provider"
)

type fakeObjects struct {
	buckets map[string]bool
	objects map[string][]byte
	makeErr error
	listErr error
}

func newFake() *fakeObjects {
	return &fakeObjects{buckets: map[string]bool{}, objects: map[string][]byte{}}
}

func (f *fakeObjects) MakeBucket(_ context.Context, name string, _ minio.MakeBucketOptions) error {
	if f.makeErr != nil {
		return f.makeErr
	}
	if f.buckets[name] {
		return minio.ErrorResponse{Code: "BucketAlreadyOwnedByYou", StatusCode: 409}
	}
	f.buckets[name] = true
	return nil
}

func (f *fakeObjects) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	if int64(len(data)) != size {
		return minio.UploadInfo{}, errors.New("size mismatch")
	}
	f.objects[key] = data
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (f *fakeObjects) ListObjects(_ context.Context, _ string, _ minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(f.objects)+1)
	if f.listErr != nil {
		ch <- minio.ObjectInfo{Err: f.listErr}
	}
	for k, v := range f.objects {
		ch <- minio.ObjectInfo{Key: k, Size: int64(len(v))}
	}
	close(ch)
	return ch
}

func TestEnsureContainer_Idempotent(t *testing.T) {
	f := newFake()
	p := &S3Provider{client: f, bucket: "patient-data"}
	for i := 0; i < 2; i++ {
		if err := p.EnsureContainer(context.Background()); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}
}

func TestEnsureContainer_Error(t *testing.T) {
	f := newFake()
	f.makeErr = minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}
	p := &S3Provider{client: f, bucket: "b"}
	if err := p.EnsureContainer(context.Background()); err == nil {
		t.Fatal("expected AccessDenied to propagate")
	}
}

func TestPutAndList(t *testing.T) {
	f := newFake()
	p := &S3Provider{client: f, bucket: "b"}

	if err := p.Put(context.Background(), "/raw-data/a.csv", []byte("abc")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := p.Put(context.Background(), "raw-data/a.csv", []byte("abcd")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	objs, err := p.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objs) != 1 || objs[0] != (provider.Object{Key: "raw-data/a.csv", Size: 4}) {
		t.Fatalf("unexpected listing: %+v", objs)
	}

	f.listErr = errors.New("denied")
	if _, err := p.List(context.Background()); err == nil {
		t.Fatal("expected list error")
	}
}

func TestSplitEndpoint(t *testing.T) {
	cases := []struct {
		in      string
		ssl     bool
		host    string
		secured bool
	}{
		{"https://s3.example.com/", false, "s3.example.com", true},
		{"http://localhost:9000", true, "localhost:9000", false},
		{"localhost:9000", false, "localhost:9000", false},
		{"//storage.local", true, "storage.local", true},
	}
	for _, c := range cases {
		host, secure := splitEndpoint(c.in, c.ssl)
		if host != c.host || secure != c.secured {
			t.Errorf("splitEndpoint(%q,%v) = %q,%v want %q,%v", c.in, c.ssl, host, secure, c.host, c.secured)
		}
	}
}

func TestFactory(t *testing.T) {
	p, err := provider.New(config.SinkS3, config.Config{S3: config.S3Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "ak",
		SecretKey: "sk",
		Bucket:    "patient-data",
		Region:    "us-east-1",
	}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "s3" || p.Container() != "patient-data" {
		t.Fatalf("unexpected provider %s/%s", p.Name(), p.Container())
	}

	if _, err := provider.New(config.SinkS3, config.Config{}); !errors.Is(err, config.ErrMissing) {
		t.Fatalf("want ErrMissing, got %v", err)
	}
}
