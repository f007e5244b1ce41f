// Package grid sorts cards into a 3x3 impact/effort grid plus an
// unclassified bucket.
package grid

type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

var levels = []Level{LevelHigh, LevelMedium, LevelLow}

// ParseLevel accepts only the exact lowercase level names.
func ParseLevel(s string) (Level, bool) {
	for _, l := range levels {
		if s == string(l) {
			return l, true
		}
	}
	return "", false
}

// Cell is one (impact, effort) combination of the grid.
type Cell struct {
	Impact Level
	Effort Level
}

const (
	UnclassifiedBucket = 0
	NumBuckets         = 10
)

// Layout fixes the order of the grid cells. Bucket i (1..9) holds the
// cards classified as Layout[i-1].
var Layout = [NumBuckets - 1]Cell{
	{LevelHigh, LevelHigh}, {LevelHigh, LevelMedium}, {LevelHigh, LevelLow},
	{LevelMedium, LevelHigh}, {LevelMedium, LevelMedium}, {LevelMedium, LevelLow},
	{LevelLow, LevelHigh}, {LevelLow, LevelMedium}, {LevelLow, LevelLow},
}

// IndexOf returns the bucket index (1..9) of c, or 0 if c is not a grid cell.
func IndexOf(c Cell) int {
	for i, cell := range Layout {
		if cell == c {
			return i + 1
		}
	}
	return UnclassifiedBucket
}

// CellAt is the inverse of IndexOf.
func CellAt(index int) (Cell, bool) {
	if index < 1 || index > len(Layout) {
		return Cell{}, false
	}
	return Layout[index-1], true
}

// Levels lists the levels from high to low.
func Levels() []Level {
	return append([]Level(nil), levels...)
}
