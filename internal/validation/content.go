package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxMediaPerPost bounds the media references attached to one post.
const MaxMediaPerPost = 4

// Content trims text and checks it is non-empty and at most limit characters.
// It returns the trimmed text.
func Content(text string, limit int) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("content is required")
	}
	if utf8.RuneCountInString(trimmed) > limit {
		return "", fmt.Errorf("content must be at most %d characters", limit)
	}
	return trimmed, nil
}
