package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"autoblog/internal/core"
	"autoblog/internal/logger"
)

// JinaProvider implements search via the Jina AI search and reader endpoints.
// No API key is required; one can be supplied for higher rate limits.
type JinaProvider struct {
	apiKey        string
	httpClient    *http.Client
	searchBaseURL string
	readerBaseURL string
}

// NewJinaProvider creates a new Jina AI search provider
func NewJinaProvider(apiKey string) *JinaProvider {
	return &JinaProvider{
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		searchBaseURL: "https://s.jina.ai",
		readerBaseURL: "https://r.jina.ai",
	}
}

// GetName returns the provider name
func (p *JinaProvider) GetName() string {
	return "jina"
}

// SetBaseURLs overrides the endpoints, mainly for tests.
func (p *JinaProvider) SetBaseURLs(searchURL, readerURL string) {
	p.searchBaseURL = strings.TrimRight(searchURL, "/")
	p.readerBaseURL = strings.TrimRight(readerURL, "/")
}

type jinaSearchResponse struct {
	Data []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"data"`
}

// Search performs a web search via s.jina.ai
func (p *JinaProvider) Search(ctx context.Context, query string, config Config) ([]core.SearchResult, error) {
	endpoint := p.searchBaseURL + "/" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Return-Format", "json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jina search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jina search returned status %d", resp.StatusCode)
	}

	var decoded jinaSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode jina response: %w", err)
	}

	results := make([]core.SearchResult, 0, len(decoded.Data))
	for _, item := range decoded.Data {
		if item.URL == "" {
			continue
		}
		description := item.Description
		if description == "" && item.Content != "" {
			description = item.Content
			if len([]rune(description)) > 200 {
				description = string([]rune(description)[:200])
			}
		}
		results = append(results, core.SearchResult{
			Title:       item.Title,
			URL:         item.URL,
			Description: description,
		})
		if config.MaxResults > 0 && len(results) >= config.MaxResults {
			break
		}
	}

	logger.Debug("Jina search completed", "query", query, "results", len(results))
	return results, nil
}

// ReadPage fetches a page as plain text via r.jina.ai
func (p *JinaProvider) ReadPage(ctx context.Context, pageURL string) (string, error) {
	endpoint := p.readerBaseURL + "/" + pageURL
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("jina reader failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("jina reader returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return string(body), nil
}
