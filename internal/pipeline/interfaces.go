package pipeline

import (
	"context"

	"autoblog/internal/core"
	"autoblog/internal/publish"
)

// Researcher gathers keyword research ahead of outline generation
type Researcher interface {
	// Research collects related questions, searches, and ranked results
	Research(ctx context.Context, keyword string) (*core.ResearchData, error)
}

// OutlineBuilder produces the article's heading structure
type OutlineBuilder interface {
	// Generate builds the two-section outline plus title and meta description
	Generate(ctx context.Context, keyword string, research *core.ResearchData) (*core.Outline, error)
}

// SectionWriter generates the body content for one outline section
type SectionWriter interface {
	Write(ctx context.Context, keyword string, sec core.OutlineSection, research *core.ResearchData) (*core.GeneratedSection, error)
}

// ImageGenerator produces the optimized eyecatch and section images
type ImageGenerator interface {
	GenerateAll(ctx context.Context, outline *core.Outline) (*core.ArticleImages, error)
}

// ProductAssigner distributes affiliate products across sub-headings
type ProductAssigner interface {
	Assign(sections []*core.GeneratedSection, pool []core.HTMLProduct, productKeyword string) []core.ProductAssignment
}

// SlugTranslator converts the keyword into a URL-safe slug
type SlugTranslator interface {
	// Translate never fails; it falls back to a timestamp slug
	Translate(ctx context.Context, keyword string) string
}

// ArticleRenderer assembles the final HTML document
type ArticleRenderer interface {
	Render(outline *core.Outline, sections []*core.GeneratedSection, images *core.ArticleImages, assignments []core.ProductAssignment) (string, error)
}

// Publisher commits the article files to the target repository
type Publisher interface {
	Publish(ctx context.Context, opts publish.Options, files []publish.File, message string) (string, error)
}

// ProgressFunc receives state transitions with a rough completion percentage.
type ProgressFunc func(state core.State, percent int)
