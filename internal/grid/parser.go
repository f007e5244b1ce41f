package grid

import (
	"strings"

	"riskreward.app/web/internal/model"
)

const (
	keyImpact = "impact"
	keyEffort = "effort"
)

var keys = []string{keyImpact, keyEffort}

// Classification is the grid cell read from a card comment. CommentID
// names that comment so it can be replaced later.
type Classification struct {
	CommentID string
	Impact    Level
	Effort    Level
}

func (c Classification) Cell() Cell {
	return Cell{Impact: c.Impact, Effort: c.Effort}
}

// FormatComment renders the comment body written for a cell. Reads accept
// either key order; writes always put impact first.
func FormatComment(impact, effort Level) string {
	return keyImpact + "=" + string(impact) + "," + keyEffort + "=" + string(effort)
}

// Classify reads the first qualifying comment of card. Comments that do
// not qualify are skipped.
func Classify(card model.Card) (Classification, bool) {
	for _, a := range card.Comments() {
		cell, ok := ParseComment(a.Data.Text)
		if !ok {
			continue
		}
		return Classification{CommentID: a.ID, Impact: cell.Impact, Effort: cell.Effort}, true
	}
	return Classification{}, false
}

// ParseComment looks for a "key=value,key=value" clause anywhere in text.
// Keys are impact and effort in either order, each exactly once; one
// whitespace character may follow the comma.
//
//	impact=high,effort=low
//	effort=medium, impact=high
func ParseComment(text string) (Cell, bool) {
	tokens := strings.Split(text, ",")
	for i := 0; i+1 < len(tokens); i++ {
		k1, v1, ok := trailingPair(tokens[i])
		if !ok {
			continue
		}
		k2, v2, ok := leadingPair(trimOneSpace(tokens[i+1]))
		if !ok || k1 == k2 {
			continue
		}

		pairs := map[string]Level{k1: v1, k2: v2}
		return Cell{Impact: pairs[keyImpact], Effort: pairs[keyEffort]}, true
	}
	return Cell{}, false
}

// trailingPair parses a token that ends in key=value, e.g. "note impact=high".
func trailingPair(token string) (string, Level, bool) {
	for _, key := range keys {
		idx := strings.LastIndex(token, key+"=")
		if idx < 0 {
			continue
		}
		if level, ok := ParseLevel(token[idx+len(key)+1:]); ok {
			return key, level, true
		}
	}
	return "", "", false
}

// leadingPair parses a token that starts with key=value. Anything after the
// value is ignored.
func leadingPair(token string) (string, Level, bool) {
	for _, key := range keys {
		rest, found := strings.CutPrefix(token, key+"=")
		if !found {
			continue
		}
		for _, level := range levels {
			if strings.HasPrefix(rest, string(level)) {
				return key, level, true
			}
		}
	}
	return "", "", false
}

func trimOneSpace(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return s[1:]
	}
	return s
}
