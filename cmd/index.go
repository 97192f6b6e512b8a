package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"codekg/internal/app"
	"codekg/internal/indexer"
)

var (
	flagForceFull bool
	flagInclude   []string
	flagExclude   []string
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Index a codebase into the knowledge graph",
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

		fmt.Printf("Indexing %s...\n", root)
		start := time.Now()

		stats, err := a.Indexer.Refresh(context.Background(), indexer.RefreshOptions{
			Root:      root,
			ForceFull: flagForceFull,
			Include:   flagInclude,
			Exclude:   flagExclude,
		})
		elapsed := time.Since(start)
		if err != nil {
			return err
		}

		fmt.Printf("\nDone in %s\n", elapsed.Round(time.Millisecond))
		fmt.Printf("  Files:   %d indexed, %d skipped\n", stats.Indexed, stats.Skipped)
		fmt.Printf("  Chunks:  %d\n", stats.Chunks)
		if len(stats.Errors) > 0 {
			fmt.Printf("  Errors:  %d\n", len(stats.Errors))
			for _, e := range stats.Errors {
				fmt.Printf("    - %s (%s): %s\n", e.File, e.Kind, e.Msg)
			}
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&flagForceFull, "force-full", false, "re-index every file regardless of content hash")
	indexCmd.Flags().StringSliceVar(&flagInclude, "include", nil, "glob patterns; only matching paths are indexed")
	indexCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "glob patterns excluded even if matched by include")
	rootCmd.AddCommand(indexCmd)
}
