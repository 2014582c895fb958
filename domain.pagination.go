package main

import (
	"math"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-indexed window over a result set.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"size"`
}

// NewPage builds a page and clamps out of range values.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Metadata describes the position of a page in the whole result set.
type Metadata struct {
	CurrentPage  int   `json:"current_page"`
	PageSize     int   `json:"page_size"`
	FirstPage    int   `json:"first_page"`
	LastPage     int   `json:"last_page"`
	TotalRecords int64 `json:"total_records"`
}

func CalculateMetadata(total int64, page Page) Metadata {
	if total == 0 {
		return Metadata{}
	}
	return Metadata{
		CurrentPage:  page.Number,
		PageSize:     page.Size,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(total) / float64(page.Size))),
		TotalRecords: total,
	}
}

// PagedData is the data member of a paginated listing response.
type PagedData struct {
	Items    interface{} `json:"items"`
	Metadata Metadata    `json:"metadata"`
}
