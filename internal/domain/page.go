package domain

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 2000
)

// PageRequest selects a zero-indexed page of results.
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Normalize fills in the default size and rejects out-of-range values.
func (p PageRequest) Normalize() (PageRequest, error) {
	if p.Page < 0 {
		return PageRequest{}, NewValidationError("page must not be negative")
	}
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
	if p.Size < 1 || p.Size > MaxPageSize {
		return PageRequest{}, validationErrorf("size must be between 1 and %d", MaxPageSize)
	}
	if p.Page > math.MaxInt/p.Size {
		return PageRequest{}, NewValidationError("page is out of range")
	}
	return p, nil
}

type Page[T any] struct {
	Items []T
	Page  int
	Size  int
	Total int
}

func NewPage[T any](items []T, req PageRequest, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: req.Page, Size: req.Size, Total: total}
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return (p.Total + p.Size - 1) / p.Size
}
