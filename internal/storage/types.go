package storage

import "errors"

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrVectorUnavailable indicates that the pgvector extension is missing
	// and a vector operation cannot be served.
	ErrVectorUnavailable = errors.New("pgvector extension not available")
)

// ListOptions provides pagination options for list operations.
type ListOptions struct {
	// Limit is the maximum number of items to return (default: 100, max: 1000).
	Limit int

	// Offset is the number of items to skip.
	Offset int
}

// Normalize applies defaults and bounds to the ListOptions.
func (o *ListOptions) Normalize() {
	if o.Limit < 1 {
		o.Limit = 100
	}

	if o.Limit > 1000 {
		o.Limit = 1000
	}

	if o.Offset < 0 {
		o.Offset = 0
	}
}

// SearchOptions provides options for vector search operations.
type SearchOptions struct {
	// Limit is the maximum number of results to return (default: 10, max: 100).
	Limit int

	// MinScore is the minimum cosine similarity (0.0 to 1.0) a result must
	// reach to be included.
	MinScore float64
}

// Normalize applies defaults and bounds to the SearchOptions.
func (o *SearchOptions) Normalize() {
	if o.Limit < 1 {
		o.Limit = 10
	}

	if o.Limit > 100 {
		o.Limit = 100
	}

	if o.MinScore < 0.0 {
		o.MinScore = 0.0
	}

	if o.MinScore > 1.0 {
		o.MinScore = 1.0
	}
}
