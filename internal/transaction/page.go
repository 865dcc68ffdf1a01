package transaction

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a validated pagination request. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// Window is the offset/limit a store applies to an ordered result set.
// A zero Limit means no limit.
type Window struct {
	Offset int
	Limit  int
}

// Pagination is the metadata block attached to multi-page responses.
type Pagination struct {
	Page     int
	PageSize int
	Total    int
	Pages    int
}

// PageResult is one page of transactions. Pagination is nil unless the total
// exceeds the page size.
type PageResult struct {
	Items      []*Transaction
	Pagination *Pagination
}

// ParsePage validates the raw page and page size. Empty values fall back to page 1
// and defaultSize respectively.
func ParsePage(page, pageSize string, defaultSize int) (Page, error) {
	p := Page{Number: 1, Size: defaultSize}

	if s := strings.TrimSpace(page); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Page{}, invalid(CodeInvalidPage, "page", err)
		}

		if n < 1 {
			return Page{}, invalid(CodeInvalidPage, "page", fmt.Errorf("must be at least 1, got %d", n))
		}

		p.Number = n
	}

	if s := strings.TrimSpace(pageSize); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Page{}, invalid(CodeInvalidPageSize, "page_size", err)
		}

		if n < 1 || n > MaxPageSize {
			return Page{}, invalid(CodeInvalidPageSize, "page_size",
				fmt.Errorf("must be between 1 and %d, got %d", MaxPageSize, n))
		}

		p.Size = n
	}

	return p, nil
}

// Window returns the store window for the page. An offset that does not fit
// in an int saturates at math.MaxInt, which lies past any result set.
func (p Page) Window() Window {
	if p.Number-1 > math.MaxInt/p.Size {
		return Window{Offset: math.MaxInt, Limit: p.Size}
	}

	return Window{Offset: (p.Number - 1) * p.Size, Limit: p.Size}
}

// Slice applies w to an already ordered slice, clipping at its end.
func Slice[T any](ordered []T, w Window) []T {
	if w.Offset < 0 || w.Offset >= len(ordered) {
		return nil
	}

	end := len(ordered)
	if w.Limit > 0 && w.Limit < end-w.Offset {
		end = w.Offset + w.Limit
	}

	return ordered[w.Offset:end]
}

// NewPageResult wraps a page of items with pagination metadata. The metadata is
// only present when total is larger than one page.
func NewPageResult(items []*Transaction, total int, p Page) PageResult {
	if items == nil {
		items = []*Transaction{}
	}

	res := PageResult{Items: items}

	if total > p.Size {
		res.Pagination = &Pagination{
			Page:     p.Number,
			PageSize: p.Size,
			Total:    total,
			Pages:    (total + p.Size - 1) / p.Size,
		}
	}

	return res
}

// Paginate slices the full ordered result set for p and attaches metadata.
func Paginate(ordered []*Transaction, p Page) PageResult {
	return NewPageResult(Slice(ordered, p.Window()), len(ordered), p)
}
