package content

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3 records puts and serves gets from memory.
type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	failPut bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut {
		return nil, errors.New("put refused")
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*params.Key] = data
	if params.ContentType != nil {
		f.types[*params.Key] = *params.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*params.Key]
	if !ok {
		return nil, errors.New("no such key")
	}
	ct := f.types[*params.Key]
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: &ct,
	}, nil
}

func TestAssetStorePutGet(t *testing.T) {
	fake := newFakeS3()
	store := newAssetStore(fake, "insightful-assets", "assets")

	key, err := store.Put(context.Background(), "diagram.png", "image/png", strings.NewReader("pixels"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(key, "assets/") || !strings.HasSuffix(key, "-diagram.png") {
		t.Errorf("key = %q, want assets/<id>-diagram.png", key)
	}

	body, contentType, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()

	data, _ := io.ReadAll(body)
	if string(data) != "pixels" {
		t.Errorf("body = %q", data)
	}
	if contentType != "image/png" {
		t.Errorf("contentType = %q", contentType)
	}
}

func TestAssetStoreUniqueKeys(t *testing.T) {
	fake := newFakeS3()
	store := newAssetStore(fake, "bucket", "assets")

	a, err := store.Put(context.Background(), "file.txt", "text/plain", strings.NewReader("one"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Put(context.Background(), "file.txt", "text/plain", strings.NewReader("two"))
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("re-upload of the same filename reused key %q", a)
	}
}

func TestAssetStorePutError(t *testing.T) {
	fake := newFakeS3()
	fake.failPut = true
	store := newAssetStore(fake, "bucket", "assets")

	if _, err := store.Put(context.Background(), "f", "text/plain", strings.NewReader("x")); err == nil {
		t.Error("Put should surface the client error")
	}
}

func TestAssetStoreGetMissing(t *testing.T) {
	store := newAssetStore(newFakeS3(), "bucket", "assets")
	if _, _, err := store.Get(context.Background(), "assets/nope"); err == nil {
		t.Error("Get of a missing key should fail")
	}
}
