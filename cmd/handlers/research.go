package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"autoblog/internal/search"
)

// NewResearchCmd creates the research command
func NewResearchCmd() *cobra.Command {
	researchCmd := &cobra.Command{
		Use:   "research [keyword]",
		Short: "Run keyword research and save the result as JSON",
		Long: `Collects related questions, related searches, and ranked results
for a keyword. The JSON output can be fed into generate via --research.

Examples:
  autoblog research "エアコン 掃除"
  autoblog research "エアコン 掃除" --output research/`,
		Args: cobra.ExactArgs(1),
		Run:  researchRunFunc,
	}

	researchCmd.Flags().String("output", "", "Directory to write the research JSON (defaults to stdout)")

	return researchCmd
}

func researchRunFunc(cmd *cobra.Command, args []string) {
	keyword := args[0]
	outputDir, _ := cmd.Flags().GetString("output")

	provider := search.NewJinaProvider(cfg.Search.JinaAPIKey)
	researcher := search.NewResearcher(provider, cfg.Search.MaxResults)

	fmt.Fprintf(os.Stderr, "🔍 Researching %q\n", keyword)
	data, err := researcher.Research(context.Background(), keyword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error researching keyword: %v\n", err)
		os.Exit(1)
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding research data: %v\n", err)
		os.Exit(1)
	}

	if outputDir == "" {
		fmt.Println(string(encoded))
		return
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}
	path := filepath.Join(outputDir, strings.ReplaceAll(keyword, " ", "-")+".json")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing research file: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "✅ Research saved: %s (%d questions, %d results)\n",
		path, len(data.PAAQuestions), len(data.TopResults))
}
