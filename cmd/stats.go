package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"codekg/internal/app"
	"codekg/internal/model"
	"codekg/internal/pathutil"
)

var statsCmd = &cobra.Command{
	Use:   "stats <path>",
	Short: "Print get_stats for an indexed project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		a, err := app.New()
		if err != nil {
			return err
		}
		defer a.Close()

		normRoot := pathutil.Normalize(root)
		project := model.Project{}.ID(normRoot)
		stats, err := a.Retriever.GetStats(context.Background(), project, normRoot)
		if err != nil {
			return err
		}

		fmt.Printf("Total chunks: %d\n", stats.TotalChunks)
		fmt.Printf("Active branch: %s\n", stats.ActiveBranch)
		fmt.Printf("Stale files (>=30d): %d\n\n", stats.StaleFileCount)

		fmt.Println("Languages:")
		langs := make([]string, 0, len(stats.LanguageCounts))
		for lang := range stats.LanguageCounts {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		for _, lang := range langs {
			fmt.Printf("  %-12s %d\n", lang, stats.LanguageCounts[lang])
		}

		fmt.Println("\nTop dependencies:")
		for _, d := range stats.TopDependencies {
			fmt.Printf("  %-20s %d\n", d.Name, d.Count)
		}

		fmt.Println("\nHigh-risk symbols (complexity, no sibling test):")
		for _, c := range stats.HighRiskSymbols {
			fmt.Printf("  %s in %s (complexity %d)\n", c.SymbolName, c.Filename, c.Complexity)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
