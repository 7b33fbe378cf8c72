package mirror

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
	supabase "github.com/supabase-community/supabase-go"

	"sci-cast/internal/errs"
)

func storageFileOptions(contentType string, upsert bool) storage_go.FileOptions {
	return storage_go.FileOptions{ContentType: &contentType, Upsert: &upsert}
}

// SupabaseStore implements ObjectStore over one Supabase storage
// bucket.
type SupabaseStore struct {
	client *supabase.Client
	bucket string
}

// NewSupabaseStore wraps an initialized Supabase client and a bucket
// name.
func NewSupabaseStore(client *supabase.Client, bucket string) *SupabaseStore {
	return &SupabaseStore{client: client, bucket: bucket}
}

// Upload writes data to objectPath, overwriting any existing object.
func (s *SupabaseStore) Upload(_ context.Context, objectPath, contentType string, data []byte) error {
	upsert := true
	_, err := s.client.Storage.UploadFile(s.bucket, objectPath, bytes.NewReader(data),
		storageFileOptions(contentType, upsert))
	if err != nil {
		return &errs.ProviderError{Provider: "supabase", Err: fmt.Errorf("upload %s: %w", objectPath, err)}
	}
	return nil
}

// Download reads the object at objectPath. A missing object is reported
// as a NotFoundError so callers can distinguish it from outages.
func (s *SupabaseStore) Download(_ context.Context, objectPath string) ([]byte, error) {
	data, err := s.client.Storage.DownloadFile(s.bucket, objectPath)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") ||
			strings.Contains(err.Error(), "404") {
			return nil, &errs.NotFoundError{Resource: objectPath}
		}
		return nil, &errs.ProviderError{Provider: "supabase", Err: fmt.Errorf("download %s: %w", objectPath, err)}
	}
	return data, nil
}

// PublicURL returns the public URL for objectPath. The bucket must be
// public for the URL to resolve.
func (s *SupabaseStore) PublicURL(objectPath string) string {
	return s.client.Storage.GetPublicUrl(s.bucket, objectPath).SignedURL
}

// BucketInfo describes the mirror bucket for the storage debug view.
type BucketInfo struct {
	Bucket        string   `json:"bucket"`
	BucketExists  bool     `json:"bucketExists"`
	KnownBuckets  []string `json:"knownBuckets"`
	CatalogExists bool     `json:"catalogExists"`
}

// Describe inspects the configured bucket and the mirrored catalog
// object.
func (s *SupabaseStore) Describe(ctx context.Context) BucketInfo {
	info := BucketInfo{Bucket: s.bucket}

	if _, err := s.client.Storage.GetBucket(s.bucket); err == nil {
		info.BucketExists = true
	}
	if buckets, err := s.client.Storage.ListBuckets(); err == nil {
		for _, b := range buckets {
			info.KnownBuckets = append(info.KnownBuckets, b.Name)
		}
	}
	if _, err := s.Download(ctx, catalogObjectPath); err == nil {
		info.CatalogExists = true
	}
	return info
}

// Healthy reports whether the bucket is reachable.
func (s *SupabaseStore) Healthy(context.Context) bool {
	_, err := s.client.Storage.GetBucket(s.bucket)
	return err == nil
}
