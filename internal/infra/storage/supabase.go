package storage

import (
	"bytes"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// SupabaseStorage uploads diagnostic artifacts to a Supabase storage
// bucket.
type SupabaseStorage struct {
	client *supabase.Client
	bucket string
}

// NewSupabaseStorage constructs the storage client. URL and key must be
// set; a bad URL surfaces here rather than at upload time.
func NewSupabaseStorage(url, serviceKey, bucket string) (*SupabaseStorage, error) {
	if url == "" || serviceKey == "" {
		return nil, fmt.Errorf("storage: missing Supabase URL or service key")
	}
	client, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	return &SupabaseStorage{client: client, bucket: bucket}, nil
}

func (s *SupabaseStorage) Upload(key, contentType string, data []byte) error {
	upsert := true
	opts := storage_go.FileOptions{ContentType: &contentType, Upsert: &upsert}
	if _, err := s.client.Storage.UploadFile(s.bucket, key, bytes.NewReader(data), opts); err != nil {
		return fmt.Errorf("storage: upload %s: %w", key, err)
	}
	return nil
}
