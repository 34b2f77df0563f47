package supabase

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	storage "github.com/supabase-community/storage-go"
	"rewind-backend/internal/media"
)

type objectUploader interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage.FileOptions) (storage.FileUploadResponse, error)
}

// StorageClient mirrors pinned coin images into a public Supabase Storage
// bucket so galleries can load them without an IPFS gateway.
type StorageClient struct {
	client  objectUploader
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) *StorageClient {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)
	return newStorageClient(client, baseURL, bucket)
}

func newStorageClient(client objectUploader, baseURL, bucket string) *StorageClient {
	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// MirrorImage stores data under coins/<imageCID><ext> and returns its public
// URL. The CID makes the path content-addressed, so re-mirroring is an upsert
// of identical bytes.
func (s *StorageClient) MirrorImage(imageCID, mimeType string, data []byte) (string, error) {
	storagePath := StoragePath(imageCID, mimeType)

	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &mimeType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

// StoragePath is the bucket-relative path of a mirrored image.
func StoragePath(imageCID, mimeType string) string {
	return "coins/" + imageCID + media.Extension(mimeType)
}
