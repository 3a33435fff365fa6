// Package slug translates Japanese keywords into URL slugs.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"autoblog/internal/llm"
	"autoblog/internal/logger"
	"autoblog/internal/prompt"
)

// Translator turns a Japanese keyword into an ASCII URL slug via the
// flash model, falling back to a timestamped slug on failure.
type Translator struct {
	client *llm.Client
	model  string
	now    func() time.Time
}

// NewTranslator creates a slug translator
func NewTranslator(client *llm.Client, model string) *Translator {
	return &Translator{client: client, model: model, now: time.Now}
}

// Translate returns a sanitized slug for the keyword. Errors degrade to
// a generated fallback slug rather than failing the run.
func (t *Translator) Translate(ctx context.Context, keyword string) string {
	text, err := t.client.GenerateText(ctx, llm.Request{
		Model:  t.model,
		Prompt: prompt.Slug(keyword),
	})
	if err != nil {
		logger.Warn("Slug translation failed, using fallback",
			"keyword", keyword, "error", err.Error())
		return t.fallback()
	}

	s := Sanitize(text)
	if s == "" {
		logger.Warn("Slug translation produced no usable characters, using fallback",
			"keyword", keyword, "raw", text)
		return t.fallback()
	}
	logger.Info("Slug translated", "keyword", keyword, "slug", s)
	return s
}

func (t *Translator) fallback() string {
	return fmt.Sprintf("article-%s", t.now().Format("20060102-150405"))
}

var (
	quotePattern     = regexp.MustCompile("[\"“”『』「」]")
	spacePattern     = regexp.MustCompile(`\s+`)
	nonSlugPattern   = regexp.MustCompile(`[^a-z0-9_-]`)
	multiDashPattern = regexp.MustCompile(`-{2,}`)
)

// Sanitize lowercases the text and reduces it to slug-safe characters,
// capped at 100 characters.
func Sanitize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = quotePattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, "-")
	s = nonSlugPattern.ReplaceAllString(s, "")
	s = multiDashPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
