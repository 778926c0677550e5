// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPageSize is used when the request carries no size parameter.
const DefaultPageSize = 10

// PageSizes is the fixed set of selectable page sizes. Requests asking for
// any other size fall back to DefaultPageSize.
var PageSizes = []int{5, 10, 25, 50, 100}

// ValidSize reports whether n is one of the selectable page sizes.
func ValidSize(n int) bool {
	for _, s := range PageSizes {
		if n == s {
			return true
		}
	}
	return false
}

// ParsePage extracts the zero-based "page" query parameter.
// Returns 0 if absent or invalid; the value is clamped against the total
// later, once the total is known.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseSize extracts the "size" query parameter, restricted to PageSizes.
func ParseSize(r *http.Request) int {
	s := query.Get(r, "size")
	if s == "" {
		return DefaultPageSize
	}
	n, err := strconv.Atoi(s)
	if err != nil || !ValidSize(n) {
		return DefaultPageSize
	}
	return n
}

// TotalPages returns ceil(total/size). A total of 0 yields 0 pages; callers
// wanting the last valid page index should use LastPage, which floors at 0.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// LastPage returns the index of the last page: max(0, TotalPages-1).
func LastPage(total, size int) int {
	tp := TotalPages(total, size)
	if tp == 0 {
		return 0
	}
	return tp - 1
}

// Clamp forces page into [0, LastPage]. Out-of-range requests (including a
// page left dangling after the last row on it was deleted) land on a valid
// page instead of erroring.
func Clamp(page, total, size int) int {
	if page < 0 {
		return 0
	}
	if last := LastPage(total, size); page > last {
		return last
	}
	return page
}

// Slice returns the window of rows for the given page. The page index is
// clamped first, so a stale index yields the last page rather than a panic
// or an empty result for a non-empty collection.
func Slice[T any](rows []T, page, size int) []T {
	if size <= 0 {
		return nil
	}
	page = Clamp(page, len(rows), size)
	start := page * size
	if start >= len(rows) {
		return nil
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// Nav holds everything a template needs to render pagination controls.
type Nav struct {
	Page       int // current zero-based page, already clamped
	PageLabel  int // 1-based page number for display
	Size       int
	Total      int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
	LastPage   int
	Start      int // 1-based index of the first row shown (0 when empty)
	End        int // 1-based index of the last row shown (0 when empty)
}

// NewNav computes navigation state for a page of a collection with the given
// total. Prev/next targets are clamped, so "next" on the last page points at
// the last page itself (a no-op link).
func NewNav(page, total, size int) Nav {
	page = Clamp(page, total, size)
	last := LastPage(total, size)

	n := Nav{
		Page:       page,
		PageLabel:  page + 1,
		Size:       size,
		Total:      total,
		TotalPages: TotalPages(total, size),
		HasPrev:    page > 0,
		HasNext:    page < last,
		PrevPage:   page,
		NextPage:   page,
		LastPage:   last,
	}
	if n.HasPrev {
		n.PrevPage = page - 1
	}
	if n.HasNext {
		n.NextPage = page + 1
	}
	if total > 0 {
		n.Start = page*size + 1
		n.End = page*size + size
		if n.End > total {
			n.End = total
		}
	}
	return n
}
