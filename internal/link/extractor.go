// Package link scores content-item pairs and builds the relationship graph
// connecting tasks and memories by explicit references, shared tags,
// lexical overlap, and temporal proximity.
package link

import (
	"strings"
	"unicode"

	"github.com/memweave/memweave/internal/item"
)

// bookkeepingPrefixes mark internal annotation tags that are hidden from
// tag-overlap scoring and from any user-visible tag projection.
var bookkeepingPrefixes = []string{"title:", "summary:"}

// stopwords are common tokens excluded from lexical comparison.
var stopwords = map[string]bool{
	"this": true,
	"that": true,
	"with": true,
	"from": true,
	"have": true,
}

// VisibleTags returns the item's tags with bookkeeping annotations
// (title:/summary: prefixed) filtered out.
func VisibleTags(it item.Item) []string {
	out := make([]string, 0, len(it.Tags))
	for _, t := range it.Tags {
		if isBookkeepingTag(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isBookkeepingTag(tag string) bool {
	for _, p := range bookkeepingPrefixes {
		if strings.HasPrefix(tag, p) {
			return true
		}
	}
	return false
}

// Tokens extracts the deduplicated lexical token set of content:
// lowercased, split on non-word boundaries, keeping only tokens longer
// than 3 characters that are not stopwords. Order of first appearance
// is preserved so a prefix cap is stable.
func Tokens(content string) []string {
	fields := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		if len(f) <= 3 || stopwords[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// SourceTokens returns the first limit tokens of content. Capping the
// source side keeps pairwise comparison cost independent of content length.
func SourceTokens(content string, limit int) []string {
	tokens := Tokens(content)
	if limit > 0 && len(tokens) > limit {
		tokens = tokens[:limit]
	}
	return tokens
}
