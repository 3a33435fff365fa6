package pipeline

import (
	"context"
	"fmt"

	"autoblog/internal/affiliate"
	"autoblog/internal/config"
	"autoblog/internal/core"
	"autoblog/internal/imagegen"
	"autoblog/internal/imageopt"
	"autoblog/internal/llm"
	"autoblog/internal/logger"
	"autoblog/internal/outline"
	"autoblog/internal/products"
	"autoblog/internal/publish"
	"autoblog/internal/render"
	"autoblog/internal/search"
	"autoblog/internal/section"
	"autoblog/internal/slug"
)

// Builder constructs a fully wired Pipeline from application config.
type Builder struct {
	cfg         *config.Config
	skipPublish bool
	productPool []core.HTMLProduct
	poolSet     bool
}

// NewBuilder creates a pipeline builder
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// WithoutPublish disables GitHub publishing regardless of config.
func (b *Builder) WithoutPublish() *Builder {
	b.skipPublish = true
	return b
}

// WithProductPool overrides the product candidates loaded from the
// configured products file.
func (b *Builder) WithProductPool(pool []core.HTMLProduct) *Builder {
	b.productPool = pool
	b.poolSet = true
	return b
}

// Build wires every stage from config and returns the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	gemini := b.cfg.AI.Gemini
	if gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client := llm.NewClient(gemini.APIKey, b.cfg.GeminiTimeout())
	if gemini.BaseURL != "" {
		client.SetBaseURL(gemini.BaseURL)
	}
	sampling := &llm.Sampling{
		Temperature:     gemini.Temperature,
		TopK:            gemini.TopK,
		TopP:            gemini.TopP,
		MaxOutputTokens: gemini.MaxOutputTokens,
	}

	factory := search.NewProviderFactory()
	provider, err := factory.CreateProvider(search.ProviderType(b.cfg.Search.Provider), map[string]string{
		"api_key": b.cfg.Search.JinaAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search provider %q: %w", b.cfg.Search.Provider, err)
	}

	var researcher Researcher
	if jina, ok := provider.(*search.JinaProvider); ok {
		researcher = search.NewResearcher(jina, b.cfg.Search.MaxResults)
	} else {
		researcher = &providerResearcher{provider: provider, maxResults: b.cfg.Search.MaxResults}
	}

	outliner := outline.NewGenerator(client, outline.Options{
		ProModel:       gemini.ProModel,
		FlashModel:     gemini.FlashModel,
		Sampling:       sampling,
		MaxRetries:     b.cfg.Pipeline.MaxSectionRetries,
		MinSubHeadings: b.cfg.Pipeline.MinSubHeadings,
		MaxSubHeadings: b.cfg.Pipeline.MaxSubHeadings,
	})
	writer := section.NewWriter(client, provider, section.Options{
		Model:      gemini.ProModel,
		Sampling:   sampling,
		MaxRetries: b.cfg.Pipeline.MaxSectionRetries,
	})

	optimizer := imageopt.NewOptimizer(imageopt.Options{
		PCWidth:        b.cfg.Images.PCWidth,
		PCMaxBytes:     b.cfg.Images.PCMaxBytes,
		MobileWidth:    b.cfg.Images.MobileWidth,
		MobileMaxBytes: b.cfg.Images.MobileMaxBytes,
	})
	imager := imagegen.NewGenerator(client, optimizer, imagegen.Options{
		Model:       gemini.ImageModel,
		MaxRetries:  b.cfg.Images.MaxRetries,
		PacingDelay: b.cfg.ImagePacingDelay(),
	})

	pool := b.productPool
	if !b.poolSet && b.cfg.Affiliate.ProductsFile != "" {
		pool, err = products.LoadFromFile(b.cfg.Affiliate.ProductsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load products file: %w", err)
		}
	}
	linker := affiliate.NewLinker(
		b.cfg.Affiliate.AmazonAssociateID,
		b.cfg.Affiliate.RakutenAffiliateID,
		b.cfg.Affiliate.RakutenBoostWords,
	)

	var publisher Publisher
	gh := b.cfg.GitHub
	if !b.skipPublish && gh.Token != "" && gh.Owner != "" && gh.Repo != "" {
		ghClient := publish.NewClient(gh.Token, 0)
		if gh.BaseURL != "" {
			ghClient.SetBaseURL(gh.BaseURL)
		}
		publisher = ghClient
	} else if !b.skipPublish {
		logger.Warn("GitHub publishing not configured, runs will stay local")
	}

	return NewPipeline(
		researcher,
		outliner,
		writer,
		imager,
		linker,
		slug.NewTranslator(client, gemini.FlashModel),
		render.NewRenderer(),
		publisher,
		&Config{
			OutputDir: b.cfg.Output.Directory,
			PublishTarget: publish.Options{
				Owner:  gh.Owner,
				Repo:   gh.Repo,
				Branch: gh.Branch,
			},
			SiteURL:     gh.SiteURL,
			ProductPool: pool,
		},
	), nil
}

// providerResearcher adapts a plain search provider into minimal
// research data when the Jina researcher is unavailable.
type providerResearcher struct {
	provider   search.Provider
	maxResults int
}

func (r *providerResearcher) Research(ctx context.Context, keyword string) (*core.ResearchData, error) {
	results, err := r.provider.Search(ctx, keyword, search.Config{MaxResults: r.maxResults})
	if err != nil {
		return nil, err
	}
	return &core.ResearchData{TopResults: results}, nil
}
