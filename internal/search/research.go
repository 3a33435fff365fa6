package search

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"autoblog/internal/core"
	"autoblog/internal/logger"
)

// Researcher gathers keyword research data: PAA questions scraped from
// Google's search page, related searches, and top organic results.
type Researcher struct {
	provider   *JinaProvider
	maxResults int
}

// NewResearcher creates a keyword researcher backed by Jina
func NewResearcher(provider *JinaProvider, maxResults int) *Researcher {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Researcher{provider: provider, maxResults: maxResults}
}

var relatedLinePattern = regexp.MustCompile(`^[ぁ-んァ-ヶー一-龯a-zA-Z0-9\s　]+$`)

// Research runs the full keyword research flow. A failed Google scrape
// degrades to search results only rather than failing the run.
func (r *Researcher) Research(ctx context.Context, keyword string) (*core.ResearchData, error) {
	results, err := r.provider.Search(ctx, keyword, Config{MaxResults: r.maxResults})
	if err != nil {
		return nil, err
	}

	data := &core.ResearchData{TopResults: results}
	for _, res := range results {
		if res.Title != "" {
			data.Suggestions = append(data.Suggestions, res.Title)
		}
	}

	googleURL := "https://www.google.co.jp/search?q=" + url.QueryEscape(keyword) + "&hl=ja"
	page, err := r.provider.ReadPage(ctx, googleURL)
	if err != nil {
		logger.Warn("Google scrape failed, continuing with search results only",
			"keyword", keyword, "error", err.Error())
		return data, nil
	}

	data.PAAQuestions = dedupe(extractPAA(page))
	data.RelatedSearches = dedupe(extractRelatedSearches(page))
	data.Suggestions = dedupe(data.Suggestions)

	logger.Info("Keyword research complete",
		"keyword", keyword,
		"paa", len(data.PAAQuestions),
		"related", len(data.RelatedSearches),
		"top_results", len(data.TopResults))

	return data, nil
}

// extractPAA pulls question lines from the 関連する質問 section onward.
func extractPAA(page string) []string {
	idx := strings.Index(page, "関連する質問")
	if idx < 0 {
		return nil
	}
	var questions []string
	for _, line := range strings.Split(page[idx:], "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "関連する質問" {
			continue
		}
		if len([]rune(trimmed)) <= 8 {
			continue
		}
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "http") {
			continue
		}
		if strings.Contains(trimmed, "?") || strings.Contains(trimmed, "？") {
			questions = append(questions, trimmed)
		}
	}
	return questions
}

// extractRelatedSearches pulls short keyword-like lines from the page bottom.
func extractRelatedSearches(page string) []string {
	lines := strings.Split(page, "\n")
	start := 0
	if len(lines) > 50 {
		start = len(lines) - 50
	}
	var related []string
	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		n := len([]rune(trimmed))
		if n <= 3 || n >= 50 {
			continue
		}
		if strings.Contains(trimmed, "関連する質問") ||
			strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "http") ||
			strings.Contains(trimmed, "?") ||
			strings.Contains(trimmed, "？") {
			continue
		}
		if relatedLinePattern.MatchString(trimmed) {
			related = append(related, trimmed)
		}
	}
	return related
}

func dedupe(items []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
