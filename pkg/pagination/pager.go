package pagination

import "fmt"

// DefaultPageSize is the number of items shown per page.
const DefaultPageSize = 10

// Pager tracks the current page over a collection of Total items.
type Pager struct {
	pageSize  int
	pageIndex int
	total     int
}

// New creates a pager on page 0 of an empty collection.
func New(pageSize int) (*Pager, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive (got %d)", pageSize)
	}
	return &Pager{pageSize: pageSize}, nil
}

// PageSize returns the fixed page size.
func (p *Pager) PageSize() int { return p.pageSize }

// PageIndex returns the zero-based current page.
func (p *Pager) PageIndex() int { return p.pageIndex }

// Total returns the collection length.
func (p *Pager) Total() int { return p.total }

// PageCount returns the number of non-empty pages.
func (p *Pager) PageCount() int {
	return (p.total + p.pageSize - 1) / p.pageSize
}

// SetTotal updates the collection length and normalizes the page index.
// Negative lengths are treated as zero.
func (p *Pager) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	p.Normalize()
}

// Bounds returns the half-open range [start, end) of the current page.
func (p *Pager) Bounds() (start, end int) {
	start = p.pageIndex * p.pageSize
	if start > p.total {
		start = p.total
	}
	end = min(start+p.pageSize, p.total)
	return start, end
}

// CurrentSlice returns a copy of the current page of collection. The bounds
// are taken from Total and further capped at len(collection).
func (p *Pager) CurrentSlice(collection []int) []int {
	start, end := p.Bounds()
	end = min(end, len(collection))
	if start >= end {
		return []int{}
	}
	out := make([]int, end-start)
	copy(out, collection[start:end])
	return out
}

// Normalize steps the page index back, one page at a time, until the page
// starts inside the collection or the index reaches 0.
func (p *Pager) Normalize() {
	for p.pageIndex > 0 && p.total <= p.pageIndex*p.pageSize {
		p.pageIndex--
	}
}

// HasPrevious reports whether a page precedes the current one.
func (p *Pager) HasPrevious() bool {
	return p.pageIndex > 0
}

// HasNext reports whether items follow the current page.
func (p *Pager) HasNext() bool {
	return p.total > (p.pageIndex+1)*p.pageSize
}

// Advance moves to the next page. It is a no-op returning false when there is
// no next page.
func (p *Pager) Advance() bool {
	if !p.HasNext() {
		return false
	}
	p.pageIndex++
	return true
}

// Retreat moves to the previous page. It is a no-op returning false on page 0.
func (p *Pager) Retreat() bool {
	if !p.HasPrevious() {
		return false
	}
	p.pageIndex--
	return true
}

// Reset returns to page 0.
func (p *Pager) Reset() {
	p.pageIndex = 0
}
