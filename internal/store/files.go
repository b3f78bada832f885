package store

import (
	"context"
	"strings"
)

// maxSourceBytes caps the aggregate size of source content returned by
// ReadSourceFiles, to keep responses within what downstream consumers
// (the conversational gateway) can carry.
const maxSourceBytes = 1024 * 1024

// SourceFile is one Terraform source file read from the bucket.
type SourceFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
	Size    int    `json:"size"`
}

// ReadSourceFiles reads every .tf/.tpl/.tfvars object under prefix. Files
// past the 1 MiB aggregate cap are skipped rather than truncated.
func (b *Bucket) ReadSourceFiles(ctx context.Context, prefix string) ([]SourceFile, int, error) {
	objects, err := b.List(ctx, prefix)
	if err != nil {
		return nil, 0, err
	}

	var files []SourceFile
	total := 0
	for _, obj := range objects {
		if !IsSourceFile(obj.Key) {
			continue
		}
		if total >= maxSourceBytes {
			continue
		}
		data, err := b.Get(ctx, obj.Key)
		if err != nil {
			return nil, total, err
		}
		total += len(data)
		files = append(files, SourceFile{
			Name:    strings.TrimPrefix(obj.Key, prefix),
			Path:    obj.Key,
			Content: string(data),
			Size:    len(data),
		})
	}
	return files, total, nil
}
