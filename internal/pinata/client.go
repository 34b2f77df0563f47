package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Client pins files and JSON documents to IPFS through the Pinata API.
type Client struct {
	baseURL    string
	jwt        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinJSONRequest struct {
	PinataContent  interface{}    `json:"pinataContent"`
	PinataMetadata pinataMetadata `json:"pinataMetadata"`
}

type pinataMetadata struct {
	Name string `json:"name"`
}

func NewClient(baseURL, jwt string) *Client {
	return NewClientWithHTTP(baseURL, jwt, &http.Client{Timeout: 60 * time.Second})
}

func NewClientWithHTTP(baseURL, jwt string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		jwt:        jwt,
		httpClient: httpClient,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "pinata",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// PinFile uploads data as a file and returns its CID.
func (c *Client) PinFile(ctx context.Context, filename, mimeType string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write form file: %w", err)
	}

	meta, _ := json.Marshal(pinataMetadata{Name: filename})
	if err := writer.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", fmt.Errorf("failed to write metadata field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return c.pin(ctx, "/pinning/pinFileToIPFS", writer.FormDataContentType(), body.Bytes())
}

// PinJSON uploads content as a JSON document and returns its CID.
func (c *Client) PinJSON(ctx context.Context, name string, content interface{}) (string, error) {
	jsonData, err := json.Marshal(pinJSONRequest{
		PinataContent:  content,
		PinataMetadata: pinataMetadata{Name: name},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	return c.pin(ctx, "/pinning/pinJSONToIPFS", "application/json", jsonData)
}

func (c *Client) pin(ctx context.Context, path, contentType string, payload []byte) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, path, contentType, payload)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) do(ctx context.Context, path, contentType string, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.jwt)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("pin failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result pinResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	if result.IpfsHash == "" {
		return "", fmt.Errorf("IpfsHash is empty in response, body: %s", string(body))
	}

	return result.IpfsHash, nil
}
