package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects  map[string]string
	getErr   error
	failures int // transient failures before Get succeeds

	puts    []*s3.PutObjectInput
	copies  []*s3.CopyObjectInput
	deletes []string
	pages   int // ListObjectsV2 page size, 0 = everything in one page
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("ThrottlingException: rate exceeded")
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	content, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(content))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			keys = append(keys, key)
		}
	}
	// Deterministic order regardless of map iteration.
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if keys[j] < keys[i] {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}

	start := 0
	if in.ContinuationToken != nil {
		fmt.Sscanf(aws.ToString(in.ContinuationToken), "%d", &start)
	}
	end := len(keys)
	if f.pages > 0 && start+f.pages < end {
		end = start + f.pages
	}

	out := &s3.ListObjectsV2Output{}
	for _, key := range keys[start:end] {
		out.Contents = append(out.Contents, s3types.Object{
			Key:  aws.String(key),
			Size: aws.Int64(int64(len(f.objects[key]))),
		})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(fmt.Sprintf("%d", end))
	}
	return out, nil
}

func (f *fakeS3) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.copies = append(f.copies, in)
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestBucketGet(t *testing.T) {
	api := &fakeS3{objects: map[string]string{"terraform/main.tf": "resource {}"}}
	b := NewBucketWithAPI(api, "tf-source")

	data, err := b.Get(context.Background(), "terraform/main.tf")
	require.NoError(t, err)
	assert.Equal(t, "resource {}", string(data))
}

func TestBucketGet_NotFound(t *testing.T) {
	b := NewBucketWithAPI(&fakeS3{objects: map[string]string{}}, "tf-source")

	_, err := b.Get(context.Background(), "terraform/missing.tf")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "s3://tf-source/terraform/missing.tf")
}

func TestBucketGet_RetriesTransientErrors(t *testing.T) {
	api := &fakeS3{
		objects:  map[string]string{"terraform/terraform.tfstate": "{}"},
		failures: 2,
	}
	b := NewBucketWithAPI(api, "tf-state")

	data, err := b.Get(context.Background(), StateKey)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestBucketGet_NonTransientNotRetried(t *testing.T) {
	api := &fakeS3{getErr: errors.New("AccessDenied: no")}
	b := NewBucketWithAPI(api, "tf-state")

	_, err := b.Get(context.Background(), StateKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestBucketPut_EncryptionAndMetadata(t *testing.T) {
	api := &fakeS3{}
	b := NewBucketWithAPI(api, "tf-source")

	err := b.Put(context.Background(), "terraform/main.tf", []byte("x"), map[string]string{"modified-by": "terraops"})
	require.NoError(t, err)

	require.Len(t, api.puts, 1)
	assert.Equal(t, s3types.ServerSideEncryptionAes256, api.puts[0].ServerSideEncryption)
	assert.Equal(t, "terraops", api.puts[0].Metadata["modified-by"])
}

func TestBucketList_FollowsContinuationTokens(t *testing.T) {
	api := &fakeS3{objects: map[string]string{}, pages: 2}
	for i := 0; i < 5; i++ {
		api.objects[fmt.Sprintf("terraform/file%d.tf", i)] = "x"
	}
	b := NewBucketWithAPI(api, "tf-source")

	objects, err := b.List(context.Background(), "terraform/")
	require.NoError(t, err)
	assert.Len(t, objects, 5)
}

func TestBucketPrefixes(t *testing.T) {
	api := &fakeS3{objects: map[string]string{
		"backups/20260101_000000/main.tf":      "x",
		"backups/20260101_000000/variables.tf": "x",
		"backups/20260215_130000/main.tf":      "x",
		"backups/manifest.json":                "x",
	}}
	b := NewBucketWithAPI(api, "tf-source")

	prefixes, err := b.Prefixes(context.Background(), "backups/")
	require.NoError(t, err)
	assert.Equal(t, []string{"backups/20260101_000000/", "backups/20260215_130000/"}, prefixes)
}

func TestBucketCopy(t *testing.T) {
	api := &fakeS3{}
	b := NewBucketWithAPI(api, "tf-source")

	require.NoError(t, b.Copy(context.Background(), "terraform/main.tf", "backups/x/main.tf"))
	require.Len(t, api.copies, 1)
	assert.Equal(t, "tf-source/terraform/main.tf", aws.ToString(api.copies[0].CopySource))
	assert.Equal(t, "backups/x/main.tf", aws.ToString(api.copies[0].Key))
}

func TestIsSourceFile(t *testing.T) {
	assert.True(t, IsSourceFile("terraform/main.tf"))
	assert.True(t, IsSourceFile("terraform/fortigate1.tpl"))
	assert.True(t, IsSourceFile("terraform/prod.tfvars"))
	assert.False(t, IsSourceFile("terraform/terraform.tfstate"))
	assert.False(t, IsSourceFile("terraform/outputs.json"))
	assert.False(t, IsSourceFile("terraform/README.md"))
}

func TestIsLockConflict(t *testing.T) {
	assert.True(t, IsLockConflict(errors.New("Error acquiring the state lock: ConditionalCheckFailedException")))
	assert.True(t, IsLockConflict(errors.New("the state is locked by tf-apply-1a2b3c4d")))
	assert.False(t, IsLockConflict(errors.New("AccessDenied")))
	assert.False(t, IsLockConflict(nil))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.New("ThrottlingException: Rate exceeded")))
	assert.True(t, isTransient(errors.New("read tcp: i/o timeout")))
	assert.False(t, isTransient(errors.New("NoSuchKey")))
	assert.False(t, isTransient(nil))
}
