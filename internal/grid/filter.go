package grid

import (
	"strings"

	"riskreward.app/web/internal/model"
)

// LabelFilter is the set of label names a card may carry to be shown.
// An empty filter lets every card through.
type LabelFilter []string

// ParseLabelFilter reads a comma separated label list such as "bug,feature".
func ParseLabelFilter(raw string) LabelFilter {
	var filter LabelFilter
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || filter.Contains(name) {
			continue
		}
		filter = append(filter, name)
	}
	return filter
}

func (f LabelFilter) Contains(name string) bool {
	for _, n := range f {
		if n == name {
			return true
		}
	}
	return false
}

func (f LabelFilter) String() string {
	return strings.Join(f, ",")
}

// Passes reports whether card carries at least one label in f.
func Passes(card model.Card, f LabelFilter) bool {
	if len(f) == 0 {
		return true
	}
	for _, name := range card.LabelNames() {
		if f.Contains(name) {
			return true
		}
	}
	return false
}

// Filter keeps the cards that pass f, preserving order.
func Filter(cards []model.Card, f LabelFilter) []model.Card {
	kept := make([]model.Card, 0, len(cards))
	for _, c := range cards {
		if Passes(c, f) {
			kept = append(kept, c)
		}
	}
	return kept
}
