package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// bucketAPI is the part of the storage-go client SupabaseStore uses.
type bucketAPI interface {
	UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	DownloadFile(bucketID, filePath string, urlOptions ...storage_go.UrlOptions) ([]byte, error)
}

// SupabaseStore writes objects to a private Supabase Storage bucket.
type SupabaseStore struct {
	client bucketAPI
	bucket string
}

// NewSupabaseStore connects to the project at projectURL using a service
// role key.
func NewSupabaseStore(projectURL, serviceKey, bucket string) (*SupabaseStore, error) {
	projectURL = strings.TrimRight(strings.TrimSpace(projectURL), "/")
	if projectURL == "" || serviceKey == "" {
		return nil, errors.New("storage: supabase url and service key are required")
	}
	if bucket == "" {
		return nil, errors.New("storage: supabase bucket is required")
	}
	client := storage_go.NewClient(projectURL+"/storage/v1", serviceKey, nil)
	return &SupabaseStore{client: client, bucket: bucket}, nil
}

func (s *SupabaseStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	upsert := false
	opts := storage_go.FileOptions{Upsert: &upsert}
	if contentType != "" {
		opts.ContentType = &contentType
	}
	if _, err := s.client.UploadFile(s.bucket, cleanKey, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("storage: supabase upload %s: %w", cleanKey, err)
	}
	return cleanKey, nil
}

func (s *SupabaseStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	data, err := s.client.DownloadFile(s.bucket, cleanKey)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("storage: supabase download %s: %w", cleanKey, err)
	}
	return data, nil
}
