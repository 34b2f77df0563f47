package gallery

import (
	"strings"
	"sync"
	"unicode/utf8"

	"rewind-backend/internal/apperr"
)

const maxCommentLength = 500

// Comments holds per-coin comment threads in memory.
type Comments struct {
	mu      sync.Mutex
	threads map[string][]string
}

func NewComments() *Comments {
	return &Comments{threads: make(map[string][]string)}
}

func (c *Comments) Add(coinAddress, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("comment text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return nil, apperr.Validation("comment is longer than 500 characters")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.threads[coinAddress] = append(c.threads[coinAddress], text)
	return append([]string{}, c.threads[coinAddress]...), nil
}

func (c *Comments) List(coinAddress string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.threads[coinAddress]...)
}
