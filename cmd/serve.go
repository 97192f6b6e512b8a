package cmd

import (
	"github.com/spf13/cobra"

	"codekg/internal/app"
	"codekg/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server exposing refresh_index, search_code, get_stats, find_definition, find_references",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New()
		if err != nil {
			return err
		}
		defer a.Close()

		srv := mcpserver.New(a.Indexer, a.Retriever, a.Log)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
