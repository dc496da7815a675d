package ledger

import (
	"slices"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Sort is the active ordering of a list.
type Sort struct {
	Field string
	Dir   Direction
}

// Toggle returns the ordering after the user picks field: the same field flips
// direction, a different field starts ascending.
func (s Sort) Toggle(field string) Sort {
	if s.Field == field {
		if s.Dir == Asc {
			return Sort{Field: field, Dir: Desc}
		}
		return Sort{Field: field, Dir: Asc}
	}
	return Sort{Field: field, Dir: Asc}
}

// Comparators maps a sortable field name to a three-way comparison.
type Comparators[R any] map[string]func(a, b R) int

// apply returns a sorted copy of items. The sort is stable in both directions,
// so records that compare equal keep the order the store returned them in.
func (c Comparators[R]) apply(items []R, s Sort) []R {
	out := slices.Clone(items)
	cmp, ok := c[s.Field]
	if !ok {
		return out
	}
	if s.Dir == Desc {
		slices.SortStableFunc(out, func(a, b R) int { return cmp(b, a) })
	} else {
		slices.SortStableFunc(out, cmp)
	}
	return out
}
