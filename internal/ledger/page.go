package ledger

// PageSize is the number of records shown per page.
const PageSize = 5

// TotalPages returns ceil(n / PageSize).
func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// clampPage keeps p inside [1, total]; an empty list still sits on page 1.
func clampPage(p, total int) int {
	return max(1, min(p, total))
}

// Page is one rendered page of a sorted list.
type Page[R any] struct {
	Items      []R
	Number     int
	TotalPages int
	Total      int
	Sort       Sort
}

// CanFirst and CanPrev are false on page 1.
func (p Page[R]) CanFirst() bool { return p.Number > 1 }
func (p Page[R]) CanPrev() bool  { return p.Number > 1 }

// CanNext and CanLast are false on the final page.
func (p Page[R]) CanNext() bool { return p.Number < p.TotalPages }
func (p Page[R]) CanLast() bool { return p.Number < p.TotalPages }

func slicePage[R any](sorted []R, number int) []R {
	start := (number - 1) * PageSize
	if start >= len(sorted) {
		return nil
	}
	end := min(start+PageSize, len(sorted))
	return sorted[start:end]
}
