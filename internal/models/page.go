package models

// Page is one window of an ordered listing.
type Page[T any] struct {
	Count   int64 `json:"count"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	Results []T   `json:"results"`
}

// NewPage builds a page, normalizing a nil result set to an empty one.
func NewPage[T any](results []T, count int64, limit, offset int) Page[T] {
	if results == nil {
		results = []T{}
	}
	return Page[T]{
		Count:   count,
		Limit:   limit,
		Offset:  offset,
		Results: results,
	}
}
