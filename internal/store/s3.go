package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrNotFound is returned when the requested object does not exist. Callers
// that treat absence as a normal state (no deployment yet) test for it with
// errors.Is.
var ErrNotFound = errors.New("object not found")

// s3API is the narrow slice of the S3 client the store uses. Tests supply a
// fake implementation.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, opts ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Object is a listed object's key and size.
type Object struct {
	Key  string
	Size int64
}

// Bucket wraps one S3 bucket with get/put/list/copy semantics and typed
// not-found errors.
type Bucket struct {
	api  s3API
	name string
}

// NewBucket returns a Bucket backed by the real S3 client.
func NewBucket(cfg aws.Config, name string) *Bucket {
	return &Bucket{api: s3.NewFromConfig(cfg), name: name}
}

// NewBucketWithAPI returns a Bucket backed by the given API, for tests.
func NewBucketWithAPI(api s3API, name string) *Bucket {
	return &Bucket{api: api, name: name}
}

// Name returns the bucket name.
func (b *Bucket) Name() string { return b.name }

// Get reads the full object at key. Returns ErrNotFound if it is absent.
func (b *Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := withRetry(ctx, func() error {
		out, err := b.api.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(b.name),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		defer out.Body.Close()
		data, err = io.ReadAll(out.Body)
		return err
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("s3://%s/%s: %w", b.name, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", b.name, key, err)
	}
	return data, nil
}

// Put writes body to key. Objects are stored with server-side encryption;
// optional metadata is attached verbatim.
func (b *Bucket) Put(ctx context.Context, key string, body []byte, metadata map[string]string) error {
	in := &s3.PutObjectInput{
		Bucket:               aws.String(b.name),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(body),
		ContentType:          aws.String("text/plain"),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	}
	if len(metadata) > 0 {
		in.Metadata = metadata
	}
	if _, err := b.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("failed to write s3://%s/%s: %w", b.name, key, err)
	}
	return nil
}

// List returns every object under prefix, following continuation tokens.
func (b *Bucket) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	var token *string
	for {
		out, err := b.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(b.name),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", b.name, prefix, err)
		}
		for _, obj := range out.Contents {
			objects = append(objects, Object{
				Key:  aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			})
		}
		if out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}
	return objects, nil
}

// Copy duplicates srcKey to dstKey within the bucket.
func (b *Bucket) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := b.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(b.name),
		CopySource: aws.String(b.name + "/" + srcKey),
		Key:        aws.String(dstKey),
	})
	if err != nil {
		return fmt.Errorf("failed to copy s3://%s/%s to %s: %w", b.name, srcKey, dstKey, err)
	}
	return nil
}

// Delete removes the object at key. Deleting an absent key is not an error.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3://%s/%s: %w", b.name, key, err)
	}
	return nil
}

// Prefixes returns the distinct first-level "directories" under prefix,
// sorted lexically. Used for backup retention.
func (b *Bucket) Prefixes(ctx context.Context, prefix string) ([]string, error) {
	objects, err := b.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var prefixes []string
	for _, obj := range objects {
		rest := strings.TrimPrefix(obj.Key, prefix)
		idx := strings.Index(rest, "/")
		if idx < 0 {
			continue
		}
		p := prefix + rest[:idx+1]
		if !seen[p] {
			seen[p] = true
			prefixes = append(prefixes, p)
		}
	}
	sort.Strings(prefixes)
	return prefixes, nil
}

func isNoSuchKey(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	// Some S3 API variations surface plain 404s.
	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound") ||
		strings.Contains(err.Error(), "404")
}
