package search

import (
	"context"

	"autoblog/internal/core"
)

// MockProvider implements Provider for testing purposes
type MockProvider struct {
	name    string
	results []core.SearchResult
}

// NewMockProvider creates a new mock search provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name: "mock",
		results: []core.SearchResult{
			{
				Title:       "エアコンの掃除方法 - 公式ガイド",
				URL:         "https://www.daikin.co.jp/air/guide/cleaning",
				Description: "エアコンの正しい掃除手順を解説します。",
			},
			{
				Title:       "家電の安全な使い方",
				URL:         "https://www.mhlw.go.jp/content/appliance-safety",
				Description: "家電製品を安全に使うための公的ガイドライン。",
			},
			{
				Title:       "最新家電の比較情報",
				URL:         "https://kakaku.com/kaden/aircon/guide",
				Description: "価格と機能の比較情報。",
			},
		},
	}
}

// GetName returns the name of this provider
func (m *MockProvider) GetName() string {
	return m.name
}

// SetResults replaces the canned results returned by Search
func (m *MockProvider) SetResults(results []core.SearchResult) {
	m.results = results
}

// Search returns mock search results
func (m *MockProvider) Search(ctx context.Context, query string, config Config) ([]core.SearchResult, error) {
	maxResults := config.MaxResults
	if maxResults <= 0 || maxResults > len(m.results) {
		maxResults = len(m.results)
	}
	out := make([]core.SearchResult, maxResults)
	copy(out, m.results[:maxResults])
	return out, nil
}
