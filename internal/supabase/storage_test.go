package supabase

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage "github.com/supabase-community/storage-go"
)

type fakeUploader struct {
	bucket string
	path   string
	body   []byte
	opts   storage.FileOptions
	err    error
}

func (f *fakeUploader) UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage.FileOptions) (storage.FileUploadResponse, error) {
	if f.err != nil {
		return storage.FileUploadResponse{}, f.err
	}
	f.bucket = bucketId
	f.path = relativePath
	f.body, _ = io.ReadAll(data)
	if len(fileOptions) > 0 {
		f.opts = fileOptions[0]
	}
	return storage.FileUploadResponse{Key: bucketId + "/" + relativePath}, nil
}

func TestMirrorImage(t *testing.T) {
	fake := &fakeUploader{}
	client := newStorageClient(fake, "https://proj.supabase.co/", "memories")

	url, err := client.MirrorImage("bafyimage", "image/png", []byte("png"))
	require.NoError(t, err)

	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/memories/coins/bafyimage.png", url)
	assert.Equal(t, "memories", fake.bucket)
	assert.Equal(t, "coins/bafyimage.png", fake.path)
	assert.Equal(t, []byte("png"), fake.body)
	require.NotNil(t, fake.opts.ContentType)
	assert.Equal(t, "image/png", *fake.opts.ContentType)
	require.NotNil(t, fake.opts.Upsert)
	assert.True(t, *fake.opts.Upsert)
}

func TestMirrorImage_UploadError(t *testing.T) {
	client := newStorageClient(&fakeUploader{err: errors.New("bucket not found")}, "https://proj.supabase.co", "memories")

	_, err := client.MirrorImage("bafyimage", "image/jpeg", []byte("jpg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket not found")
}

func TestStoragePath(t *testing.T) {
	assert.Equal(t, "coins/cid.jpg", StoragePath("cid", "image/jpeg"))
	assert.Equal(t, "coins/cid.webp", StoragePath("cid", "image/webp"))
}
