package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"rewind-backend/internal/apperr"
)

var statusIDPattern = regexp.MustCompile(`^\d+$`)

// Client resolves social post URLs to their first photo and author through
// the fxtwitter metadata API.
type Client struct {
	baseURL      string
	allowedHosts map[string]bool
	httpClient   *http.Client
	breaker      *gobreaker.CircuitBreaker
}

// Post is the resolved preview of a social post.
type Post struct {
	Title       string
	Description string
	ImageURL    string
}

type fxResponse struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Tweet   *fxTweet `json:"tweet"`
}

type fxTweet struct {
	Text   string `json:"text"`
	Author struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
	} `json:"author"`
	Media *struct {
		Photos []struct {
			URL string `json:"url"`
		} `json:"photos"`
	} `json:"media"`
}

func NewClient(baseURL string, allowedHosts []string) *Client {
	return NewClientWithHTTP(baseURL, allowedHosts, &http.Client{Timeout: 10 * time.Second})
}

func NewClientWithHTTP(baseURL string, allowedHosts []string, httpClient *http.Client) *Client {
	hosts := make(map[string]bool, len(allowedHosts))
	for _, h := range allowedHosts {
		hosts[strings.ToLower(strings.TrimSpace(h))] = true
	}
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		allowedHosts: hosts,
		httpClient:   httpClient,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "fxtwitter",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Supports reports whether rawURL is on an allowed host.
func (c *Client) Supports(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return c.allowedHosts[normalizeHost(u.Hostname())]
}

// Resolve validates rawURL against the allow-list, extracts the numeric
// status id and fetches the post.
func (c *Client) Resolve(ctx context.Context, rawURL string) (*Post, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apperr.Validation("The provided input is not a valid URL.")
	}

	if !c.allowedHosts[normalizeHost(u.Hostname())] {
		return nil, apperr.Unsupported(apperr.CodeUnsupportedSource,
			fmt.Sprintf("links from %s are not supported", u.Hostname()))
	}

	statusID := ""
	for _, part := range strings.Split(u.Path, "/") {
		if statusIDPattern.MatchString(part) {
			statusID = part
			break
		}
	}
	if statusID == "" {
		return nil, &apperr.Error{
			Kind:    apperr.KindValidation,
			Code:    apperr.CodeResolutionFailed,
			Message: "Could not find a valid post id in the URL.",
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, statusID)
	})
	if err != nil {
		return nil, apperr.Collaborator(apperr.CodeResolutionFailed, "Failed to process memory", err)
	}
	tweet := result.(*fxTweet)

	if tweet.Media == nil || len(tweet.Media.Photos) == 0 || tweet.Media.Photos[0].URL == "" {
		return nil, apperr.Collaborator(apperr.CodeResolutionFailed, "Failed to process memory",
			fmt.Errorf("this post does not contain a photo to use as a memory"))
	}

	return &Post{
		Title:       fmt.Sprintf("%s (@%s)", tweet.Author.Name, tweet.Author.ScreenName),
		Description: tweet.Text,
		ImageURL:    tweet.Media.Photos[0].URL,
	}, nil
}

func (c *Client) fetch(ctx context.Context, statusID string) (*fxTweet, error) {
	endpoint := c.baseURL + "/status/" + statusID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch post: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result fxResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Tweet == nil {
		return nil, fmt.Errorf("post data not found in response")
	}

	return result.Tweet, nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "mobile.")
	return host
}
