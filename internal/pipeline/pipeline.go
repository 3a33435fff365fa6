// Package pipeline orchestrates the keyword-to-published-article workflow.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"autoblog/internal/core"
	"autoblog/internal/logger"
	"autoblog/internal/publish"
	"autoblog/internal/render"
)

// Pipeline coordinates all stages of one article generation run.
type Pipeline struct {
	researcher Researcher
	outliner   OutlineBuilder
	writer     SectionWriter
	imager     ImageGenerator
	assigner   ProductAssigner
	slugger    SlugTranslator
	renderer   ArticleRenderer
	publisher  Publisher

	config *Config
}

// Config holds orchestration settings shared across runs.
type Config struct {
	// OutputDir receives local artifacts (HTML, images, run result JSON).
	OutputDir string

	// PublishTarget identifies the GitHub Pages repository. Publishing is
	// skipped when the publisher is nil.
	PublishTarget publish.Options

	// SiteURL is the public base URL of the published site. When set, the
	// result carries SiteURL/{slug}/ instead of the commit URL.
	SiteURL string

	// ProductPool holds affiliate product candidates, possibly empty.
	ProductPool []core.HTMLProduct
}

// NewPipeline creates a pipeline with all stage dependencies. The
// publisher may be nil for local-only runs.
func NewPipeline(
	researcher Researcher,
	outliner OutlineBuilder,
	writer SectionWriter,
	imager ImageGenerator,
	assigner ProductAssigner,
	slugger SlugTranslator,
	renderer ArticleRenderer,
	publisher Publisher,
	config *Config,
) *Pipeline {
	if config == nil {
		config = &Config{}
	}
	return &Pipeline{
		researcher: researcher,
		outliner:   outliner,
		writer:     writer,
		imager:     imager,
		assigner:   assigner,
		slugger:    slugger,
		renderer:   renderer,
		publisher:  publisher,
		config:     config,
	}
}

// RunOptions configures a single generation run.
type RunOptions struct {
	Keyword string

	// ProductKeyword overrides the search term used for affiliate links.
	// Defaults to Keyword.
	ProductKeyword string

	// Research supplies precomputed research data and skips the research
	// stage when non-nil.
	Research *core.ResearchData

	// Products overrides the configured affiliate candidate pool for this
	// run. The configured pool applies when nil.
	Products []core.HTMLProduct

	// SkipPublish keeps the run local even when a publisher is configured.
	SkipPublish bool

	// Progress is invoked on every state transition. Optional.
	Progress ProgressFunc
}

// stagePercent maps each state to its rough position in the run.
var stagePercent = map[core.State]int{
	core.StateResearching:      5,
	core.StateBuildingOutline:  15,
	core.StateWritingSections:  30,
	core.StateGeneratingImages: 60,
	core.StateLinkingProducts:  80,
	core.StateAssembling:       90,
	core.StatePublished:        100,
	core.StateFailed:           100,
}

// Run executes the full pipeline for one keyword. A run with recorded
// stage errors can still publish; only outline failure, a fully failed
// section stage, or assembly failure are terminal.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*core.PipelineResult, error) {
	if opts.Keyword == "" {
		return nil, fmt.Errorf("keyword is required")
	}

	result := &core.PipelineResult{
		RunID:     uuid.New().String(),
		Keyword:   opts.Keyword,
		State:     core.StateIdle,
		StartedAt: time.Now(),
	}
	defer func() { result.FinishedAt = time.Now() }()

	setState := func(s core.State) {
		result.State = s
		logger.Info("Pipeline state changed", "run_id", result.RunID, "state", string(s))
		if opts.Progress != nil {
			opts.Progress(s, stagePercent[s])
		}
	}
	fail := func(stage core.Stage, err error) (*core.PipelineResult, error) {
		result.Errors = append(result.Errors, core.StageError{Stage: stage, Index: -1, Message: err.Error()})
		setState(core.StateFailed)
		return result, fmt.Errorf("%s stage failed: %w", stage, err)
	}

	research := opts.Research
	if research == nil {
		setState(core.StateResearching)
		data, err := p.researcher.Research(ctx, opts.Keyword)
		if err != nil {
			logger.Warn("Research failed, continuing without research data", "error", err)
			result.Errors = append(result.Errors, core.StageError{Stage: core.StageResearch, Index: -1, Message: err.Error()})
			data = &core.ResearchData{}
		}
		research = data
	}

	setState(core.StateBuildingOutline)
	outline, err := p.outliner.Generate(ctx, opts.Keyword, research)
	if err != nil {
		return fail(core.StageOutline, err)
	}
	result.Outline = outline

	setState(core.StateWritingSections)
	sections := make([]*core.GeneratedSection, len(outline.Sections))
	written := 0
	for i, sec := range outline.Sections {
		generated, err := p.writer.Write(ctx, opts.Keyword, sec, research)
		if err != nil {
			logger.Error("Section generation failed", err, "index", i, "title", sec.Title)
			result.Errors = append(result.Errors, core.StageError{Stage: core.StageSections, Index: i, Message: err.Error()})
			continue
		}
		sections[i] = generated
		written++
	}
	if written == 0 {
		return fail(core.StageSections, fmt.Errorf("all %d sections failed", len(outline.Sections)))
	}
	for _, sec := range sections {
		if sec != nil {
			result.Sections = append(result.Sections, *sec)
			result.TotalCharCount += sec.CharCount()
		}
	}

	setState(core.StateGeneratingImages)
	var images *core.ArticleImages
	if p.imager != nil {
		images, err = p.imager.GenerateAll(ctx, outline)
		if err != nil {
			logger.Warn("Image generation failed, continuing without images", "error", err)
			result.Errors = append(result.Errors, core.StageError{Stage: core.StageImages, Index: -1, Message: err.Error()})
			images = nil
		}
	}

	setState(core.StateLinkingProducts)
	productKeyword := opts.ProductKeyword
	if productKeyword == "" {
		productKeyword = opts.Keyword
	}
	pool := opts.Products
	if pool == nil {
		pool = p.config.ProductPool
	}
	result.Assignments = p.assigner.Assign(sections, pool, productKeyword)

	setState(core.StateAssembling)
	html, err := p.renderer.Render(outline, sections, images, result.Assignments)
	if err != nil {
		return fail(core.StageAssembly, err)
	}
	result.HTML = html
	result.Slug = p.slugger.Translate(ctx, opts.Keyword)

	if err := p.writeArtifacts(result, images); err != nil {
		logger.Warn("Failed to write local artifacts", "error", err)
		result.Errors = append(result.Errors, core.StageError{Stage: core.StageAssembly, Index: -1, Message: err.Error()})
	}

	if p.publisher != nil && !opts.SkipPublish {
		files := publishFiles(result.Slug, html, images)
		message := fmt.Sprintf("Add article: %s", result.Slug)
		commitURL, err := p.publisher.Publish(ctx, p.config.PublishTarget, files, message)
		if err != nil {
			return fail(core.StagePublish, err)
		}
		result.PublishedURL = commitURL
		if p.config.SiteURL != "" {
			result.PublishedURL = fmt.Sprintf("%s/%s/", p.config.SiteURL, result.Slug)
		}
	} else {
		logger.Info("Publishing skipped", "run_id", result.RunID)
	}

	setState(core.StatePublished)
	logger.Info("Pipeline run finished",
		"run_id", result.RunID,
		"slug", result.Slug,
		"sections", written,
		"chars", result.TotalCharCount,
		"errors", len(result.Errors))
	return result, nil
}

// publishFiles lays the article out as {slug}/index.html plus its images.
func publishFiles(slug, html string, images *core.ArticleImages) []publish.File {
	files := []publish.File{
		{Path: slug + "/index.html", Content: []byte(html)},
	}
	for _, asset := range render.ImageAssets(images) {
		files = append(files, publish.File{Path: slug + "/" + asset.Path, Content: asset.Data, Binary: true})
	}
	return files
}

// writeArtifacts persists the run output locally so a publish failure
// never requires regeneration.
func (p *Pipeline) writeArtifacts(result *core.PipelineResult, images *core.ArticleImages) error {
	if p.config.OutputDir == "" {
		return nil
	}
	dir := filepath.Join(p.config.OutputDir, result.Slug)
	if err := os.MkdirAll(filepath.Join(dir, "images"), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(result.HTML), 0o644); err != nil {
		return fmt.Errorf("failed to write article HTML: %w", err)
	}
	for _, asset := range render.ImageAssets(images) {
		if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(asset.Path)), asset.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", asset.Path, err)
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "result.json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write run result: %w", err)
	}

	logger.Info("Artifacts written", "dir", dir)
	return nil
}
