package search

import "errors"

var (
	// ErrUnsupportedProvider is returned for unknown provider types
	ErrUnsupportedProvider = errors.New("unsupported search provider")

	// ErrNoResults is returned when a search completes but finds nothing
	ErrNoResults = errors.New("no search results found")
)
