package composer

import (
	"math"

	"github.com/leandroluk/querykit/core"
)

// maxPageSize bounds page sizes so the look-ahead limit cannot overflow.
const maxPageSize = math.MaxInt32

// Pagination is the per-call window derived from a raw query. Compile
// returns it and Searcher hands it to response shaping; it is never stored.
type Pagination struct {
	Limit    int
	Offset   int
	PageFrom int // zero-based page index
	PageSize int // same as Limit
}

// PageInfo is the pagination block of a search response. PreviousPage and
// NextPage are nil when there is no such page.
type PageInfo struct {
	PreviousPage *int `json:"previousPage"`
	NextPage     *int `json:"nextPage"`
	PageSize     int  `json:"pageSize"`
}

// newPagination builds the window for a page size and page index.
func newPagination(pageSize, pageFrom int) Pagination {
	return Pagination{
		Limit:    pageSize,
		Offset:   pageFrom * pageSize,
		PageFrom: pageFrom,
		PageSize: pageSize,
	}
}

// extractPagination reads page_size and page_from. Missing, non-numeric,
// non-positive or oversized sizes fall back to the default; missing,
// non-numeric or negative pages, and pages whose offset would overflow, fall
// back to 0.
func (c *Compiler) extractPagination(raw RawQuery) Pagination {
	pageSize, ok := raw.Int(c.names.PageSize)
	if !ok || pageSize <= 0 || pageSize > maxPageSize {
		pageSize = c.names.DefaultPageSize
	}
	pageFrom, ok := raw.Int(c.names.PageFrom)
	if !ok || pageFrom < 0 || pageFrom > math.MaxInt/pageSize {
		pageFrom = 0
	}
	return newPagination(pageSize, pageFrom)
}

// paginationOf derives the window of a prebuilt descriptor.
func (c *Compiler) paginationOf(descriptor *core.Descriptor) Pagination {
	pageSize := descriptor.Limit
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = c.names.DefaultPageSize
	}
	return Pagination{
		Limit:    pageSize,
		Offset:   descriptor.Offset,
		PageFrom: descriptor.Offset / pageSize,
		PageSize: pageSize,
	}
}

// Page shapes the response block from the number of rows fetched with the
// look-ahead limit (PageSize+1).
func (p Pagination) Page(fetched int) PageInfo {
	info := PageInfo{PageSize: p.PageSize}
	if p.PageFrom > 0 {
		previous := p.PageFrom - 1
		info.PreviousPage = &previous
	}
	if fetched > p.PageSize {
		next := p.PageFrom + 1
		info.NextPage = &next
	}
	return info
}
