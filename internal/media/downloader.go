package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxDownloadSize = 20 << 20

// Downloader fetches remote images and re-encodes them as data URIs.
type Downloader struct {
	httpClient *http.Client
}

func NewDownloader() *Downloader {
	return &Downloader{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewDownloaderWithClient is used by tests to point at an httptest server.
func NewDownloaderWithClient(httpClient *http.Client) *Downloader {
	return &Downloader{httpClient: httpClient}
}

// FetchDataURI downloads url and returns it as a data URI.
func (d *Downloader) FetchDataURI(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("failed to download image: status %d, body: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > maxDownloadSize {
		return "", fmt.Errorf("image exceeds %d bytes", maxDownloadSize)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("downloaded image is empty")
	}

	mimeType := resp.Header.Get("Content-Type")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = DetectMIMEType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("downloaded content is not an image: %s", mimeType)
	}

	return EncodeDataURI(mimeType, data), nil
}
