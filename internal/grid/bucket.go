package grid

import "riskreward.app/web/internal/model"

// Entry is one card placed in a bucket. CommentID is empty in the
// unclassified bucket.
type Entry struct {
	Card      model.Card
	CommentID string
}

// Classified pairs a card with its classification, if it has one.
type Classified struct {
	Card           model.Card
	Classification *Classification
}

// Buckets holds the unclassified bucket at index 0 and the grid cells at
// 1..9 in Layout order.
type Buckets [NumBuckets][]Entry

// Len returns the number of entries across all buckets.
func (b Buckets) Len() int {
	n := 0
	for _, entries := range b {
		n += len(entries)
	}
	return n
}

// Cell returns the entries of grid cell c.
func (b Buckets) Cell(c Cell) []Entry {
	return b[IndexOf(c)]
}

func (b Buckets) Unclassified() []Entry {
	return b[UnclassifiedBucket]
}

// ClassifyAll classifies each card in order.
func ClassifyAll(cards []model.Card) []Classified {
	out := make([]Classified, 0, len(cards))
	for _, card := range cards {
		item := Classified{Card: card}
		if c, ok := Classify(card); ok {
			item.Classification = &c
		}
		out = append(out, item)
	}
	return out
}

// Bucketize places every item in exactly one bucket, keeping input order
// within each bucket.
func Bucketize(items []Classified) Buckets {
	var b Buckets
	for i := range b {
		b[i] = []Entry{}
	}

	for _, item := range items {
		if item.Classification == nil {
			b[UnclassifiedBucket] = append(b[UnclassifiedBucket], Entry{Card: item.Card})
			continue
		}
		// A classification outside the grid lands in the unclassified bucket.
		idx := IndexOf(item.Classification.Cell())
		entry := Entry{Card: item.Card}
		if idx != UnclassifiedBucket {
			entry.CommentID = item.Classification.CommentID
		}
		b[idx] = append(b[idx], entry)
	}
	return b
}
