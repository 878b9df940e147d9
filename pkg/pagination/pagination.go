package pagination

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultSize = 10
	MaxSize     = 100
)

// Params holds zero-based page parameters extracted from a request.
type Params struct {
	Page int
	Size int
}

// New normalizes page and size: a negative page becomes 0, a non-positive
// size becomes DefaultSize, and size is capped at MaxSize. Page is capped so
// that Offset()+Size never overflows.
func New(page, size int) Params {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	if maxPage := math.MaxInt/size - 1; page > maxPage {
		page = maxPage
	}
	return Params{Page: page, Size: size}
}

// FromContext extracts pagination parameters from the echo context.
// Unparseable values fall back to the defaults.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	return New(page, size)
}

// Offset is the index of the first element of the page.
func (p Params) Offset() int {
	return p.Page * p.Size
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset()+p.Size < total
}

// HasPrevious returns true if there are results before the current page.
func (p Params) HasPrevious() bool {
	return p.Page > 0
}

// Page is one page of a result set. Totals always describe the whole set.
type Page[T any] struct {
	Content       []T  `json:"content"`
	Page          int  `json:"page"`
	Size          int  `json:"size"`
	TotalElements int  `json:"total_elements"`
	TotalPages    int  `json:"total_pages"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
	Empty         bool `json:"empty"`
}

// NewPage wraps an already-sliced page of content.
func NewPage[T any](content []T, p Params, total int) *Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if p.Size > 0 {
		totalPages = (total + p.Size - 1) / p.Size
	}
	return &Page[T]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         !p.HasPrevious(),
		Last:          !p.HasNext(total),
		Empty:         len(content) == 0,
	}
}

// Slice pages through a fully materialized result set. An offset past the
// end yields an empty page, never an error.
func Slice[T any](all []T, p Params) *Page[T] {
	start := p.Offset()
	if start >= len(all) {
		return NewPage([]T{}, p, len(all))
	}
	end := start + p.Size
	if end > len(all) {
		end = len(all)
	}
	return NewPage(all[start:end], p, len(all))
}
