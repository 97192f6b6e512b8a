package mcpserver

import (
	"fmt"
	"strings"

	"codekg/internal/model"
)

func formatRefreshStats(stats *model.RefreshStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## refresh_index\n\n")
	fmt.Fprintf(&sb, "- indexed: %d\n- skipped: %d\n- chunks: %d\n- elapsed_ms: %d\n", stats.Indexed, stats.Skipped, stats.Chunks, stats.ElapsedMS)
	if len(stats.Errors) == 0 {
		return sb.String()
	}
	fmt.Fprintf(&sb, "\n### errors (%d)\n\n", len(stats.Errors))
	for _, e := range stats.Errors {
		fmt.Fprintf(&sb, "- **%s** (%s): %s\n", e.File, e.Kind, e.Msg)
	}
	return sb.String()
}

func formatSearchResults(query string, results []model.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for query: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q (%d)\n\n", query, len(results))
	for i, r := range results {
		c := r.Chunk
		fmt.Fprintf(&sb, "### %d. `%s` (%s, lines %d-%d)\n\n", i+1, c.Filename, c.SymbolName, c.StartLine, c.EndLine)
		fmt.Fprintf(&sb, "**Kind:** %s  \n**Language:** %s  \n**Matched by:** %s", c.SymbolKind, c.Language, r.MatchedBy)
		if c.Author != nil {
			fmt.Fprintf(&sb, "  \n**Author:** %s", *c.Author)
		}
		if c.LastModified != nil {
			fmt.Fprintf(&sb, "  \n**Last modified:** %s", *c.LastModified)
		}
		fmt.Fprintf(&sb, "\n\n```%s\n%s\n```\n\n", strings.ToLower(c.Language), c.Content)
	}
	return sb.String()
}

func formatStats(stats model.Stats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Project stats\n\n")
	fmt.Fprintf(&sb, "- total chunks: %d\n", stats.TotalChunks)
	fmt.Fprintf(&sb, "- active branch: %s\n", stats.ActiveBranch)
	fmt.Fprintf(&sb, "- stale files (>=30d): %d\n\n", stats.StaleFileCount)

	fmt.Fprintf(&sb, "### Languages\n\n")
	for lang, count := range stats.LanguageCounts {
		fmt.Fprintf(&sb, "- %s: %d\n", lang, count)
	}

	fmt.Fprintf(&sb, "\n### Top dependencies\n\n")
	for _, d := range stats.TopDependencies {
		fmt.Fprintf(&sb, "- %s (%d)\n", d.Name, d.Count)
	}

	fmt.Fprintf(&sb, "\n### High-risk symbols (complexity, no sibling test)\n\n")
	for _, c := range stats.HighRiskSymbols {
		fmt.Fprintf(&sb, "- `%s` in %s (complexity %d)\n", c.SymbolName, c.Filename, c.Complexity)
	}
	return sb.String()
}

func formatDefinitions(symbol string, candidates []model.DefinitionCandidate) string {
	if len(candidates) == 0 {
		return fmt.Sprintf("No definition found for %q", symbol)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Definitions of %q (%d)\n\n", symbol, len(candidates))
	for _, cand := range candidates {
		c := cand.Chunk
		fmt.Fprintf(&sb, "- `%s` in %s:%d-%d (%s)\n", c.SymbolName, c.Filename, c.StartLine, c.EndLine, cand.Confidence)
	}
	return sb.String()
}

func formatReferences(symbol string, refs []model.ReferenceResult) string {
	if len(refs) == 0 {
		return fmt.Sprintf("No references found for %q", symbol)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## References to %q (%d)\n\n", symbol, len(refs))
	for _, r := range refs {
		fmt.Fprintf(&sb, "- `%s` in %s:%d (%s, %s)\n", r.Chunk.SymbolName, r.Chunk.Filename, r.Chunk.StartLine, r.Kind, r.Confidence)
	}
	return sb.String()
}
