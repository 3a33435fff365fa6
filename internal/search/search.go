// Package search provides web search providers for article research.
package search

import (
	"context"

	"autoblog/internal/core"
)

// Provider defines the unified interface for search providers
type Provider interface {
	// Search performs a web search and returns ranked results
	Search(ctx context.Context, query string, config Config) ([]core.SearchResult, error)

	// GetName returns the name of the search provider
	GetName() string
}

// Config holds configuration for search requests
type Config struct {
	MaxResults int // Maximum number of results to return
}

// ProviderType represents the type of search provider
type ProviderType string

const (
	ProviderTypeJina ProviderType = "jina"
	ProviderTypeMock ProviderType = "mock"
)

// ProviderFactory creates search providers based on type and configuration
type ProviderFactory struct{}

// NewProviderFactory creates a new provider factory
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// CreateProvider creates a search provider of the specified type
func (f *ProviderFactory) CreateProvider(providerType ProviderType, config map[string]string) (Provider, error) {
	switch providerType {
	case ProviderTypeJina:
		return NewJinaProvider(config["api_key"]), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
