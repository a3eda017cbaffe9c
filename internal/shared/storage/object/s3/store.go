package s3

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"governance-backend/internal/shared/storage/object"
	"governance-backend/internal/shared/util"
)

// API is the subset of the S3 client the store calls.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// Store keeps policy documents in one bucket under an optional key prefix.
type Store struct {
	api      API
	bucket   string
	keys     keyspace
	kmsKeyID string
}

// New loads the default AWS credential chain and returns a bucket-backed store.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region = strings.TrimSpace(region); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithAPI(s3.NewFromConfig(cfg), bucket, prefix, kmsKeyID)
}

// NewWithAPI wraps an existing client.
func NewWithAPI(api API, bucket, prefix, kmsKeyID string) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}
	return &Store{
		api:      api,
		bucket:   bucket,
		keys:     keyspace(strings.Trim(strings.TrimSpace(prefix), "/")),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}, nil
}

// Save uploads r as namespace/<id>_<name> with server-side encryption.
func (s *Store) Save(ctx context.Context, namespace string, fileName string, r io.Reader) (string, int64, string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", 0, "", fmt.Errorf("sanitize file name: %w", err)
	}
	if strings.Contains(namespace, "..") {
		return "", 0, "", errors.New("invalid namespace")
	}
	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	storageKey := path.Join(strings.Trim(namespace, "/"), strings.ReplaceAll(uuid.NewString(), "-", "")+"_"+name)
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", 0, "", fmt.Errorf("read head: %w", err)
	}
	mimeType := http.DetectContentType(head)
	body := &countingReader{r: br}

	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.keys.full(storageKey)),
		Body:        body,
		ContentType: aws.String(mimeType),
	}
	s.encrypt(in)
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return "", 0, "", s.wrap("put", storageKey, err)
	}
	return storageKey, body.n, mimeType, nil
}

func (s *Store) encrypt(in *s3.PutObjectInput) {
	if s.kmsKeyID == "" {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAes256
		return
	}
	in.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
	in.SSEKMSKeyId = aws.String(s.kmsKeyID)
}

// Open streams a stored object. Missing keys map to object.ErrNotFound.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.keys.full(storageKey)),
	})
	if err != nil {
		return nil, s.wrap("get", storageKey, err)
	}
	return out.Body, nil
}

// List returns the objects under prefix with keys relative to the store prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]object.Info, error) {
	listPrefix := s.keys.full(prefix)
	if listPrefix != "" && !strings.HasSuffix(listPrefix, "/") {
		listPrefix += "/"
	}
	pages := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(listPrefix),
	})
	out := []object.Info{}
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, s.wrap("list", prefix, err)
		}
		for _, obj := range page.Contents {
			key := s.keys.relative(aws.ToString(obj.Key))
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			info := object.Info{Key: key, SizeBytes: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				info.ModifiedAt = obj.LastModified.UTC()
			}
			out = append(out, info)
		}
	}
	return out, nil
}

// Delete removes a stored object.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.keys.full(storageKey)),
	})
	if err != nil {
		return s.wrap("delete", storageKey, err)
	}
	return nil
}

func (s *Store) wrap(op, key string, err error) error {
	var noKey *s3types.NoSuchKey
	var apiErr smithy.APIError
	if errors.As(err, &noKey) || (errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey") {
		return fmt.Errorf("%w: %s", object.ErrNotFound, key)
	}
	return fmt.Errorf("s3 %s bucket=%s key=%s: %w", op, s.bucket, s.keys.full(key), err)
}

// keyspace maps store-relative keys to bucket keys under a fixed prefix.
type keyspace string

func (k keyspace) full(key string) string {
	key = strings.TrimLeft(key, "/")
	switch {
	case k == "":
		return key
	case key == "":
		return string(k)
	}
	return string(k) + "/" + key
}

func (k keyspace) relative(objectKey string) string {
	if k == "" {
		return objectKey
	}
	return strings.TrimPrefix(objectKey, string(k)+"/")
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var _ object.ObjectStore = (*Store)(nil)
