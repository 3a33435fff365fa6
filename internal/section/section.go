// Package section writes the body of one outline section via the pro model.
package section

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"autoblog/internal/core"
	"autoblog/internal/llm"
	"autoblog/internal/logger"
	"autoblog/internal/prompt"
	"autoblog/internal/retry"
	"autoblog/internal/search"
)

// maxSources caps the number of citable URLs passed to the model.
const maxSources = 15

// Options controls section writing.
type Options struct {
	Model      string
	Sampling   *llm.Sampling
	MaxRetries int
	// Now supplies the date used to ground the prompt. Defaults to time.Now.
	Now func() time.Time
}

// Writer generates section bodies grounded on research data.
type Writer struct {
	client   *llm.Client
	provider search.Provider
	opts     Options
}

// NewWriter creates a section writer. The search provider is only used
// when research data carries no top results.
func NewWriter(client *llm.Client, provider search.Provider, opts Options) *Writer {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Writer{client: client, provider: provider, opts: opts}
}

// Write generates the body for one outline section. Transient API errors
// and unparseable responses are retried against the same budget.
func (w *Writer) Write(ctx context.Context, keyword string, sec core.OutlineSection, research *core.ResearchData) (*core.GeneratedSection, error) {
	sources := w.collectSources(ctx, keyword, sec, research)

	req := llm.Request{
		Model:        w.opts.Model,
		SystemPrompt: prompt.SectionSystem(w.opts.Now()),
		Prompt:       prompt.SectionUser(keyword, sec, sources),
		Sampling:     w.opts.Sampling,
		UseSearch:    true,
	}

	var result *core.GeneratedSection
	err := retry.Do(ctx, w.opts.MaxRetries,
		retry.Linear(2*time.Second),
		llm.IsRetryable,
		func() error {
			text, err := w.client.GenerateText(ctx, req)
			if err != nil {
				return err
			}
			result = parseMarkdown(text, sec)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", sec.Title, err)
	}

	normalize(result)
	w.checkHeadings(sec, result)

	logger.Info("Section generated",
		"title", result.Title,
		"sub_sections", len(result.SubSections),
		"chars", result.CharCount())
	return result, nil
}

// collectSources returns the allow-list of citable URLs. Research top
// results are reused as-is; without them a fallback search runs against
// the trust filter.
func (w *Writer) collectSources(ctx context.Context, keyword string, sec core.OutlineSection, research *core.ResearchData) []core.SearchResult {
	if research != nil && len(research.TopResults) > 0 {
		logger.Debug("Reusing research top results as sources", "count", len(research.TopResults))
		if len(research.TopResults) > maxSources {
			return research.TopResults[:maxSources]
		}
		return research.TopResults
	}
	if w.provider == nil {
		return nil
	}

	queries := []string{keyword + " 公式サイト"}
	for i, h := range sec.SubHeadings {
		if i >= 2 {
			break
		}
		queries = append(queries, keyword+" "+h+" 公式")
	}

	var all []core.SearchResult
	for _, q := range queries {
		results, err := w.provider.Search(ctx, q, search.Config{MaxResults: 10})
		if err != nil {
			logger.Warn("Fallback source search failed", "query", q, "error", err.Error())
			continue
		}
		all = append(all, results...)
	}
	filtered := search.FilterReliable(all, maxSources)
	logger.Debug("Fallback source search complete", "candidates", len(all), "kept", len(filtered))
	return filtered
}

var codeFencePattern = regexp.MustCompile("```(?:markdown|md)?\\s*([\\s\\S]*?)\\s*```")

// parseMarkdown splits the model output into intro and sub-sections.
// When no sub-headings are found the whole body becomes the intro and
// placeholders are synthesized so downstream indexes stay aligned.
func parseMarkdown(content string, sec core.OutlineSection) *core.GeneratedSection {
	content = codeFencePattern.ReplaceAllString(content, "$1")
	content = strings.TrimSpace(content)

	result := &core.GeneratedSection{Title: sec.Title}
	var intro []string
	var current *core.SubSection
	var body []string
	seenH2 := false

	flush := func() {
		if current != nil {
			current.Content = strings.TrimSpace(strings.Join(body, "\n"))
			result.SubSections = append(result.SubSections, *current)
		}
		current = nil
		body = nil
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "### "):
			flush()
			current = &core.SubSection{Title: strings.TrimSpace(strings.TrimPrefix(trimmed, "### "))}
		case strings.HasPrefix(trimmed, "## "):
			if !seenH2 {
				seenH2 = true
				result.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
			}
		case current != nil:
			body = append(body, line)
		default:
			intro = append(intro, line)
		}
	}
	flush()
	result.Intro = strings.TrimSpace(strings.Join(intro, "\n"))

	if len(result.SubSections) == 0 {
		logger.Warn("No sub-headings in model output, synthesizing placeholders", "section", sec.Title)
		for _, h := range sec.SubHeadings {
			result.SubSections = append(result.SubSections, core.SubSection{
				Title:   h,
				Content: "コンテンツの生成に失敗しました。",
			})
		}
	}
	return result
}

var (
	bubbleLeftPattern  = regexp.MustCompile(`(?i)<div class="bubble-left"[^>]*>\s*<span class="bubble-icon"[^>]*>[^<]*</span>`)
	bubbleRightPattern = regexp.MustCompile(`(?i)<div class="bubble-right"[^>]*>\s*<span class="bubble-icon"[^>]*>[^<]*</span>`)
	headingLinePattern = regexp.MustCompile(`(?m)^#{1,6}\s+.+$`)
	boldStarPattern    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	boldUnderPattern   = regexp.MustCompile(`__([^_]+)__`)
	emStarPattern      = regexp.MustCompile(`\*([^*<>]+)\*`)
)

// NormalizeBubbleMarkup canonicalizes bubble HTML and converts leftover
// markdown emphasis inside a block to HTML.
func NormalizeBubbleMarkup(content string) string {
	content = bubbleLeftPattern.ReplaceAllString(content, `<div class="bubble-left"><span class="bubble-icon">Q</span>`)
	content = bubbleRightPattern.ReplaceAllString(content, `<div class="bubble-right"><span class="bubble-icon">A</span>`)
	content = headingLinePattern.ReplaceAllString(content, "")
	content = boldStarPattern.ReplaceAllString(content, "<strong>$1</strong>")
	content = boldUnderPattern.ReplaceAllString(content, "<strong>$1</strong>")
	content = emStarPattern.ReplaceAllString(content, "<em>$1</em>")
	return content
}

func normalize(s *core.GeneratedSection) {
	s.Intro = NormalizeBubbleMarkup(s.Intro)
	for i := range s.SubSections {
		s.SubSections[i].Content = NormalizeBubbleMarkup(s.SubSections[i].Content)
	}
}

// checkHeadings logs any divergence from the requested sub-headings.
// The content is kept either way.
func (w *Writer) checkHeadings(requested core.OutlineSection, got *core.GeneratedSection) {
	present := make(map[string]bool, len(got.SubSections))
	for _, sub := range got.SubSections {
		present[sub.Title] = true
	}
	for _, h := range requested.SubHeadings {
		if !present[h] {
			logger.Error("Requested sub-heading missing from output", nil,
				"section", requested.Title, "heading", h)
		}
	}
	if got.Title != requested.Title {
		logger.Warn("Model rewrote section heading",
			"requested", requested.Title, "got", got.Title)
	}
}
