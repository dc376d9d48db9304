package domain

import "strings"

// TagPrefix marks a token as a tag.
const TagPrefix = '#'

// ExtractTags splits text into a title (non-tag words joined by a single
// space) and the ordered list of tags. Duplicated tags are kept.
func ExtractTags(text string) (title string, tags []string) {
	words := strings.Fields(strings.TrimSpace(text))
	titleWords := make([]string, 0, len(words))
	tags = make([]string, 0)
	for _, w := range words {
		if len(w) == 0 {
			continue
		}
		if w[0] == TagPrefix {
			tags = append(tags, w)
			continue
		}
		titleWords = append(titleWords, w)
	}
	return strings.Join(titleWords, " "), tags
}

// HasTag reports whether tags contains tag.
func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
