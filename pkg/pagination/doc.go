// Package pagination slices an ordered collection into fixed-size pages.
//
// A Pager holds one piece of state, the zero-based page index. The collection
// length is supplied from outside with SetTotal and the page size is fixed at
// construction. The index never points past the collection when it is
// non-empty: shrinking the total clamps the index down, and Advance refuses
// to step onto an empty page.
//
// Example usage:
//
//	pager, _ := pagination.New(10)
//	pager.SetTotal(len(film.StarshipIDs))
//	visible := pager.CurrentSlice(film.StarshipIDs)
//	if pager.HasNext() {
//		pager.Advance()
//	}
//
// A Pager is not safe for concurrent use; callers that share one guard it.
package pagination
