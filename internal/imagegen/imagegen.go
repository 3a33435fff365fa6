// Package imagegen generates article images via the Gemini image model.
package imagegen

import (
	"context"
	"fmt"
	"time"

	"autoblog/internal/core"
	"autoblog/internal/imageopt"
	"autoblog/internal/llm"
	"autoblog/internal/logger"
	"autoblog/internal/prompt"
	"autoblog/internal/retry"
)

// sectionImageIndex is the only outline section that gets its own image.
// The eyecatch already covers the first section visually.
const sectionImageIndex = 1

// Options controls image generation.
type Options struct {
	Model       string
	MaxRetries  int
	PacingDelay time.Duration
}

// Generator produces the eyecatch and per-section images for an article.
type Generator struct {
	client    *llm.Client
	optimizer *imageopt.Optimizer
	opts      Options
}

// NewGenerator creates an image generator
func NewGenerator(client *llm.Client, optimizer *imageopt.Optimizer, opts Options) *Generator {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if opts.PacingDelay <= 0 {
		opts.PacingDelay = 5 * time.Second
	}
	return &Generator{client: client, optimizer: optimizer, opts: opts}
}

// GenerateAll produces the eyecatch plus the image for the designated
// section, pacing calls to stay under the image model's rate limit.
// A failed eyecatch fails the whole step; section images may come back nil.
func (g *Generator) GenerateAll(ctx context.Context, outline *core.Outline) (*core.ArticleImages, error) {
	eyecatch, err := g.generateOptimized(ctx, outline.Title)
	if err != nil {
		return nil, fmt.Errorf("eyecatch: %w", err)
	}

	images := &core.ArticleImages{
		Eyecatch:     eyecatch,
		SectionPairs: make([]*core.OptimizedImagePair, len(outline.Sections)),
	}

	for i, section := range outline.Sections {
		if i != sectionImageIndex {
			continue
		}
		select {
		case <-time.After(g.opts.PacingDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		pair, err := g.generateOptimized(ctx, section.Title)
		if err != nil {
			logger.Warn("Section image generation failed, continuing without it",
				"section", section.Title, "error", err.Error())
			continue
		}
		images.SectionPairs[i] = pair
	}
	return images, nil
}

// generateOptimized runs one retried generation call and optimizes the result.
func (g *Generator) generateOptimized(ctx context.Context, text string) (*core.OptimizedImagePair, error) {
	raw, err := g.Generate(ctx, text)
	if err != nil {
		return nil, err
	}
	pair, err := g.optimizer.Optimize(raw.Data)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	return pair, nil
}

// Generate produces one raw image for the given display text.
func (g *Generator) Generate(ctx context.Context, text string) (*core.GeneratedImage, error) {
	req := llm.Request{
		Model:     g.opts.Model,
		Prompt:    prompt.Image(text),
		WantImage: true,
	}

	var image *core.GeneratedImage
	err := retry.Do(ctx, g.opts.MaxRetries,
		retry.Exponential(time.Second, 10*time.Second),
		llm.IsRetryable,
		func() error {
			result, err := g.client.Generate(ctx, req)
			if err != nil {
				return err
			}
			if len(result.ImageData) == 0 {
				return &llm.APIError{Kind: llm.KindParse, Message: "response contained no image data"}
			}
			image = &core.GeneratedImage{
				Data:     result.ImageData,
				MimeType: result.ImageMime,
				AltText:  text,
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	logger.Info("Image generated", "alt", text, "bytes", len(image.Data), "mime", image.MimeType)
	return image, nil
}
