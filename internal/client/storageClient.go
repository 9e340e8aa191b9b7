package client

import (
	"fmt"

	"edemy-backend/internal/config"

	storage "github.com/supabase-community/storage-go"
)

// MediaStorage is the media boundary. Uploads happen on the client before a
// course is created; this side only releases an already-uploaded object when a
// downstream failure would otherwise orphan it.
type MediaStorage interface {
	Remove(objectPath string) error
}

type supabaseStorageImpl struct {
	client *storage.Client
	bucket string
}

func NewSupabaseStorage(cfg *config.Storage) MediaStorage {
	storageClient := storage.NewClient(cfg.SupabaseURL+"/storage/v1", cfg.SupabaseKey, nil)

	return &supabaseStorageImpl{
		client: storageClient,
		bucket: cfg.Bucket,
	}
}

func (s *supabaseStorageImpl) Remove(objectPath string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{objectPath})
	if err != nil {
		return fmt.Errorf("remove storage object %s: %w", objectPath, err)
	}

	return nil
}
