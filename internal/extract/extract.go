// Package extract pulls hashtags and mentions out of post text.
package extract

import (
	"regexp"
	"sort"
	"strings"
)

var (
	hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	mentionPattern = regexp.MustCompile(`@[A-Za-z0-9_]+`)
)

// Hashtags returns the distinct tags in text, lower-cased, without '#', in order of appearance.
func Hashtags(text string) []string {
	return distinct(hashtagPattern.FindAllString(text, -1), "#")
}

// Mentions returns the distinct mentioned usernames, lower-cased, without '@'.
func Mentions(text string) []string {
	return distinct(mentionPattern.FindAllString(text, -1), "@")
}

// NormalizeTag lower-cases a tag and strips leading '#' characters.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(tag), "#"))
}

func distinct(matches []string, prefix string) []string {
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		v := strings.ToLower(strings.TrimPrefix(m, prefix))
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// TagCount is a hashtag with the number of posts using it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// CountHashtags counts, per tag, how many of texts use it, and returns the
// top limit tags by count (ties broken alphabetically). keep, when non-nil,
// filters tags before ranking.
func CountHashtags(texts []string, limit int, keep func(tag string) bool) []TagCount {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, tag := range Hashtags(text) {
			if keep != nil && !keep(tag) {
				continue
			}
			counts[tag]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
