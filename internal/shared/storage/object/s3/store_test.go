package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"governance-backend/internal/shared/storage/object"
)

type fakeAPI struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
	listed  []string
}

func newFakeAPI() *fakeAPI { return &fakeAPI{objects: map[string][]byte{}} }

func (f *fakeAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func (f *fakeAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	prefix := aws.ToString(in.Prefix)
	f.listed = append(f.listed, prefix)
	out := &s3.ListObjectsV2Output{}
	modified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for key, data := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out.Contents = append(out.Contents, s3types.Object{Key: aws.String(key), Size: aws.Int64(int64(len(data))), LastModified: &modified})
		}
	}
	return out, nil
}

func TestStoreRoundTripUnderPrefix(t *testing.T) {
	api := newFakeAPI()
	store, err := NewWithAPI(api, "bucket", "/root/", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	key, size, mime, err := store.Save(ctx, "policies", "AI Policy.txt", strings.NewReader("Human review required."))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(key, "policies/") || size != int64(len("Human review required.")) {
		t.Fatalf("unexpected key %q size %d", key, size)
	}
	if !strings.HasPrefix(mime, "text/plain") {
		t.Fatalf("expected sniffed text mime, got %q", mime)
	}
	put := api.puts[0]
	if !strings.HasPrefix(aws.ToString(put.Key), "root/policies/") || put.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("unexpected put %q %q", aws.ToString(put.Key), put.ServerSideEncryption)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "Human review required." {
		t.Fatalf("unexpected body %q", body)
	}

	items, err := store.List(ctx, "policies")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Key != key || api.listed[0] != "root/policies/" {
		t.Fatalf("unexpected list %+v (prefix %q)", items, api.listed[0])
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreUsesKMSWhenConfigured(t *testing.T) {
	api := newFakeAPI()
	store, _ := NewWithAPI(api, "bucket", "", "kms-key")
	if _, _, _, err := store.Save(context.Background(), "policies", "p.md", strings.NewReader("# p")); err != nil {
		t.Fatalf("save: %v", err)
	}
	put := api.puts[0]
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(put.SSEKMSKeyId) != "kms-key" {
		t.Fatalf("expected kms encryption, got %q %q", put.ServerSideEncryption, aws.ToString(put.SSEKMSKeyId))
	}
}

func TestStoreRejectsBadInput(t *testing.T) {
	if _, err := NewWithAPI(newFakeAPI(), " ", "", ""); err == nil {
		t.Fatalf("expected bucket required")
	}
	store, _ := NewWithAPI(newFakeAPI(), "bucket", "", "")
	if _, _, _, err := store.Save(context.Background(), "../etc", "p.txt", strings.NewReader("x")); err == nil {
		t.Fatalf("expected namespace traversal to be rejected")
	}
}

func TestKeyspace(t *testing.T) {
	cases := []struct {
		prefix keyspace
		key    string
		full   string
	}{
		{prefix: "", key: "policies/a.pdf", full: "policies/a.pdf"},
		{prefix: "root", key: "/policies/a.pdf", full: "root/policies/a.pdf"},
		{prefix: "root/sub", key: "policies/a.pdf", full: "root/sub/policies/a.pdf"},
		{prefix: "root", key: "", full: "root"},
	}
	for _, tc := range cases {
		if got := tc.prefix.full(tc.key); got != tc.full {
			t.Fatalf("full(%q, %q) = %q, want %q", tc.prefix, tc.key, got, tc.full)
		}
	}
	if got := keyspace("root").relative("other/a.pdf"); got != "other/a.pdf" {
		t.Fatalf("expected foreign key unchanged, got %q", got)
	}
}
