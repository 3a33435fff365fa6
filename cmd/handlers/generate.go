package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"autoblog/internal/core"
	"autoblog/internal/pipeline"
	"autoblog/internal/products"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate [keyword]",
		Short: "Generate and publish a full article for a keyword",
		Long: `Runs the complete pipeline for one Japanese search keyword:
research, outline, section writing, images, affiliate products, HTML
assembly, and the GitHub deploy.

Examples:
  autoblog generate "エアコン 掃除"
  autoblog generate "エアコン 掃除" --product-keyword "エアコン 洗浄スプレー"
  autoblog generate "エアコン 掃除" --skip-publish
  autoblog generate "エアコン 掃除" --research research/エアコン-掃除.json`,
		Args: cobra.ExactArgs(1),
		Run:  generateRunFunc,
	}

	generateCmd.Flags().String("product-keyword", "", "Search term for affiliate products (defaults to the keyword)")
	generateCmd.Flags().String("research", "", "Path to a research JSON file from the research command")
	generateCmd.Flags().String("products", "", "Path to a saved marketplace results page for affiliate products")
	generateCmd.Flags().Bool("skip-publish", false, "Generate locally without deploying to GitHub")

	return generateCmd
}

func generateRunFunc(cmd *cobra.Command, args []string) {
	keyword := args[0]
	productKeyword, _ := cmd.Flags().GetString("product-keyword")
	researchFile, _ := cmd.Flags().GetString("research")
	productsFile, _ := cmd.Flags().GetString("products")
	skipPublish, _ := cmd.Flags().GetBool("skip-publish")

	var research *core.ResearchData
	if researchFile != "" {
		data, err := os.ReadFile(researchFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading research file: %v\n", err)
			os.Exit(1)
		}
		research = &core.ResearchData{}
		if err := json.Unmarshal(data, research); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing research file: %v\n", err)
			os.Exit(1)
		}
	}

	var pool []core.HTMLProduct
	if productsFile != "" {
		var err error
		pool, err = products.LoadFromFile(productsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading products file: %v\n", err)
			os.Exit(1)
		}
	}

	builder := pipeline.NewBuilder(cfg)
	if skipPublish {
		builder = builder.WithoutPublish()
	}
	p, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building pipeline: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("📝 Generating article for %q\n", keyword)
	result, err := p.Run(ctx, pipeline.RunOptions{
		Keyword:        keyword,
		ProductKeyword: productKeyword,
		Research:       research,
		Products:       pool,
		SkipPublish:    skipPublish,
		Progress: func(state core.State, percent int) {
			fmt.Printf("  [%3d%%] %s\n", percent, state)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Generation failed: %v\n", err)
		if result != nil {
			printStageErrors(result)
		}
		os.Exit(1)
	}

	fmt.Printf("✅ Article generated: %s (%d characters)\n", result.Slug, result.TotalCharCount)
	if result.PublishedURL != "" {
		fmt.Printf("🌐 Published: %s\n", result.PublishedURL)
	}
	if result.Degraded() {
		fmt.Println("⚠️  Completed with degraded stages:")
		printStageErrors(result)
	}
}

func printStageErrors(result *core.PipelineResult) {
	for _, stageErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "  - %s\n", stageErr.Error())
	}
}
