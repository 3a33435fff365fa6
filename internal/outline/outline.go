// Package outline generates the two-section article outline from keyword research.
package outline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"autoblog/internal/core"
	"autoblog/internal/llm"
	"autoblog/internal/logger"
	"autoblog/internal/prompt"
	"autoblog/internal/retry"
)

// Classifier reports whether a PAA question expresses fear or anxiety.
type Classifier func(question string) bool

var anxietyPattern = regexp.MustCompile(`壊れ|大丈夫|どうなる|すぐ|ダメ|故障|危険|失敗|間違`)

// DefaultClassifier matches the anxiety lexicon in PAA questions.
func DefaultClassifier(question string) bool {
	return anxietyPattern.MatchString(question)
}

// Options controls outline generation.
type Options struct {
	ProModel       string
	FlashModel     string
	Sampling       *llm.Sampling
	MaxRetries     int
	MinSubHeadings int
	MaxSubHeadings int
	Classifier     Classifier
}

// Generator builds article outlines via the Gemini pro and flash models.
type Generator struct {
	client *llm.Client
	opts   Options
}

// NewGenerator creates an outline generator
func NewGenerator(client *llm.Client, opts Options) *Generator {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.MinSubHeadings <= 0 {
		opts.MinSubHeadings = 5
	}
	if opts.MaxSubHeadings <= 0 {
		opts.MaxSubHeadings = 6
	}
	if opts.Classifier == nil {
		opts.Classifier = DefaultClassifier
	}
	return &Generator{client: client, opts: opts}
}

// Generate produces a two-section outline for the keyword. The two H2
// design calls run concurrently; PAA questions are split into anxiety
// and procedural groups, one group per section.
func (g *Generator) Generate(ctx context.Context, keyword string, research *core.ResearchData) (*core.Outline, error) {
	tokens := core.KeywordTokens(keyword)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("keyword produced no tokens: %q", keyword)
	}

	var fearPAAs, procedurePAAs []string
	if research != nil {
		for _, q := range research.PAAQuestions {
			if g.opts.Classifier(q) {
				fearPAAs = append(fearPAAs, q)
			} else {
				procedurePAAs = append(procedurePAAs, q)
			}
		}
	}
	logger.Info("Classified PAA questions",
		"keyword", keyword, "anxiety", len(fearPAAs), "procedural", len(procedurePAAs))

	var related []string
	if research != nil {
		related = research.RelatedSearches
	}

	var first, second core.OutlineSection
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s, err := g.generateSection(egCtx, keyword, tokens, fearPAAs, related, true)
		if err != nil {
			return fmt.Errorf("first section: %w", err)
		}
		first = s
		return nil
	})
	eg.Go(func() error {
		s, err := g.generateSection(egCtx, keyword, tokens, procedurePAAs, related, false)
		if err != nil {
			return fmt.Errorf("second section: %w", err)
		}
		second = s
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	title, meta := g.generateTitleMeta(ctx, keyword, first)

	result := &core.Outline{
		Title:           title,
		MetaDescription: meta,
		Sections:        []core.OutlineSection{first, second},
	}
	g.validate(keyword, tokens, result)
	return result, nil
}

type sectionResponse struct {
	Title      string   `json:"title"`
	H3Headings []string `json:"h3Headings"`
}

func (g *Generator) generateSection(ctx context.Context, keyword string, tokens, paaQuestions, related []string, anxiety bool) (core.OutlineSection, error) {
	focus := "手順・方法・判断基準を体系的に解説する"
	if anxiety {
		focus = "読者の不安を解消し、安心できる条件と対処法を示す"
	}

	req := llm.Request{
		Model:        g.opts.ProModel,
		SystemPrompt: prompt.OutlineSystem(tokens, anxiety),
		Prompt: prompt.OutlineUser(keyword, tokens, &core.ResearchData{
			PAAQuestions:    paaQuestions,
			RelatedSearches: related,
		}, focus),
		Sampling: g.opts.Sampling,
	}

	var parsed sectionResponse
	err := retry.Do(ctx, g.opts.MaxRetries,
		retry.Exponential(time.Second, 10*time.Second),
		llm.IsRetryable,
		func() error {
			// Decode into a fresh value so a rejected attempt cannot
			// leak fields into the next one.
			var attempt sectionResponse
			if err := g.client.GenerateJSON(ctx, req, &attempt); err != nil {
				return err
			}
			parsed = attempt
			return nil
		})
	if err != nil {
		return core.OutlineSection{}, err
	}

	section := core.OutlineSection{
		Title:       StripHeadingLabel(parsed.Title),
		SubHeadings: g.enforceSubHeadingLimits(parsed.H3Headings, tokens),
	}
	if section.Title == "" {
		return core.OutlineSection{}, fmt.Errorf("model returned empty section title")
	}
	return section, nil
}

var (
	bracketLabelPattern = regexp.MustCompile(`【H2-\d+】|\[H2-\d+\]|H2-\d+|H2\d+`)
	numberLabelPattern  = regexp.MustCompile(`^[【\[（(]?\d+[）)\]】]?\s*[-:：.]?\s*`)
)

// StripHeadingLabel removes numbering artifacts like 【H2-1】 or "1. "
// that models sometimes prepend to headings.
func StripHeadingLabel(title string) string {
	title = bracketLabelPattern.ReplaceAllString(title, "")
	title = numberLabelPattern.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// enforceSubHeadingLimits trims to the maximum and warns on violations.
// Keyword-containing sub-headings are logged but kept.
func (g *Generator) enforceSubHeadingLimits(headings, tokens []string) []string {
	cleaned := make([]string, 0, len(headings))
	for _, h := range headings {
		h = StripHeadingLabel(h)
		if h == "" {
			continue
		}
		for _, token := range tokens {
			if strings.Contains(h, token) {
				logger.Warn("Sub-heading contains main keyword token", "heading", h, "token", token)
				break
			}
		}
		cleaned = append(cleaned, h)
	}

	if len(cleaned) > g.opts.MaxSubHeadings {
		logger.Info("Trimming sub-headings", "from", len(cleaned), "to", g.opts.MaxSubHeadings)
		cleaned = cleaned[:g.opts.MaxSubHeadings]
	}
	if len(cleaned) < g.opts.MinSubHeadings {
		logger.Warn("Fewer sub-headings than expected",
			"count", len(cleaned), "expected_min", g.opts.MinSubHeadings)
	}
	return cleaned
}

type titleMetaResponse struct {
	Title           string `json:"title"`
	MetaDescription string `json:"metaDescription"`
}

// generateTitleMeta asks the flash model for a title and meta description.
// Any failure falls back to static defaults instead of failing the outline.
func (g *Generator) generateTitleMeta(ctx context.Context, keyword string, first core.OutlineSection) (string, string) {
	title := keyword + "について知っておきたいこと"
	meta := keyword + "に関する疑問を解決し、安心して行動できるための情報を提供します。"

	var parsed titleMetaResponse
	err := g.client.GenerateJSON(ctx, llm.Request{
		Model:  g.opts.FlashModel,
		Prompt: prompt.TitleMeta(keyword, first),
	}, &parsed)
	if err != nil {
		logger.Warn("Title generation failed, using defaults", "error", err.Error())
		return title, meta
	}
	if parsed.Title != "" {
		title = parsed.Title
	}
	if parsed.MetaDescription != "" {
		meta = parsed.MetaDescription
	}
	return title, meta
}

// validate logs keyword placement violations without failing the run.
func (g *Generator) validate(keyword string, tokens []string, o *core.Outline) {
	for i, section := range o.Sections {
		allPresent := true
		for _, token := range tokens {
			if !strings.Contains(section.Title, token) {
				allPresent = false
				break
			}
		}
		if allPresent {
			logger.Info("Section heading contains all keyword tokens", "index", i+1, "heading", section.Title)
		} else {
			logger.Error("Section heading missing keyword tokens", nil,
				"index", i+1, "heading", section.Title, "required", strings.Join(tokens, "、"))
		}

		for j, h := range section.SubHeadings {
			for _, token := range tokens {
				if strings.Contains(h, token) {
					logger.Error("Sub-heading contains forbidden keyword token", nil,
						"section", i+1, "index", j+1, "heading", h, "token", token)
					break
				}
			}
		}
	}
}
