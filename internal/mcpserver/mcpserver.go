// Package mcpserver exposes the five JSON-RPC tools — refresh_index,
// search_code, get_stats, find_definition, find_references — over MCP,
// backed by an Indexer and a Retriever. All diagnostic output goes
// through the caller-supplied logger, never stdout: the response stream
// carries only JSON-RPC frames.
package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"codekg/internal/indexer"
	"codekg/internal/model"
	"codekg/internal/pathutil"
	"codekg/internal/retriever"
)

// Server wires the Indexer and Retriever into an MCP tool set.
type Server struct {
	idx *indexer.Indexer
	ret *retriever.Retriever
	log zerolog.Logger
}

// New builds a Server. Call Serve to run it over stdio.
func New(idx *indexer.Indexer, ret *retriever.Retriever, log zerolog.Logger) *Server {
	return &Server{idx: idx, ret: ret, log: log}
}

// Serve registers every tool and blocks, speaking MCP over stdin/stdout.
func (s *Server) Serve() error {
	srv := mcpserver.NewMCPServer("codekg", "1.0.0", mcpserver.WithToolCapabilities(false))

	srv.AddTool(refreshIndexTool(), s.handleRefreshIndex)
	srv.AddTool(searchCodeTool(), s.handleSearchCode)
	srv.AddTool(getStatsTool(), s.handleGetStats)
	srv.AddTool(findDefinitionTool(), s.handleFindDefinition)
	srv.AddTool(findReferencesTool(), s.handleFindReferences)

	return mcpserver.ServeStdio(srv)
}

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

var writeAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(false),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func refreshIndexTool() mcp.Tool {
	return mcp.NewTool("refresh_index",
		mcp.WithDescription("Walk a project root, parse and embed changed files, and relink the knowledge graph."),
		mcp.WithToolAnnotation(writeAnnotation),
		mcp.WithString("root_path", mcp.Required(), mcp.Description("Absolute or relative path to the project root")),
		mcp.WithString("force_full_scan", mcp.Description("\"true\" to re-index every file regardless of content hash (default false)")),
		mcp.WithString("include", mcp.Description("Comma-separated glob patterns; only matching paths are indexed")),
		mcp.WithString("exclude", mcp.Description("Comma-separated glob patterns excluded even if matched by include")),
	)
}

func searchCodeTool() mcp.Tool {
	return mcp.NewTool("search_code",
		mcp.WithDescription("Hybrid vector + keyword search over an indexed project, reranked by language match and file priority."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural language or keyword query")),
		mcp.WithString("root_path", mcp.Required(), mcp.Description("Project root used to resolve the project id")),
		mcp.WithNumber("limit", mcp.Description("Maximum results, clamped to [1, 100] (default 10)")),
		mcp.WithString("include", mcp.Description("Comma-separated glob patterns; only matching paths are returned")),
		mcp.WithString("exclude", mcp.Description("Comma-separated glob patterns excluded even if matched by include")),
	)
}

func getStatsTool() mcp.Tool {
	return mcp.NewTool("get_stats",
		mcp.WithDescription("Project-wide counts, language breakdown, dependency hubs, high-risk symbols, active branch, and stale-file count."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("root_path", mcp.Required(), mcp.Description("Project root used to resolve the project id")),
	)
}

func findDefinitionTool() mcp.Tool {
	return mcp.NewTool("find_definition",
		mcp.WithDescription("Resolve a symbol's definition, preferring structural edges from a specific usage site."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Symbol name to resolve")),
		mcp.WithString("root_path", mcp.Required(), mcp.Description("Project root used to resolve the project id")),
		mcp.WithString("filename", mcp.Description("File containing the usage site, project-root-relative")),
		mcp.WithNumber("line", mcp.Description("Line number of the usage site within filename")),
	)
}

func findReferencesTool() mcp.Tool {
	return mcp.NewTool("find_references",
		mcp.WithDescription("List every chunk that refers to a symbol, preferring structural edges and falling back to text search."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Symbol name to look up")),
		mcp.WithString("root_path", mcp.Required(), mcp.Description("Project root used to resolve the project id")),
	)
}

func (s *Server) handleRefreshIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := req.GetString("root_path", "")
	if root == "" {
		return mcp.NewToolResultError("root_path is required"), nil
	}

	stats, err := s.idx.Refresh(ctx, indexer.RefreshOptions{
		Root:      root,
		ForceFull: strings.EqualFold(req.GetString("force_full_scan", "false"), "true"),
		Include:   splitGlobs(req.GetString("include", "")),
		Exclude:   splitGlobs(req.GetString("exclude", "")),
	})
	if err != nil {
		s.log.Error().Err(err).Str("root", root).Msg("refresh_index")
		return mcp.NewToolResultError(fmt.Sprintf("refresh_index failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatRefreshStats(stats)), nil
}

func (s *Server) handleSearchCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	root := req.GetString("root_path", "")
	if query == "" || root == "" {
		return mcp.NewToolResultError("query and root_path are required"), nil
	}

	pid, err := projectID(root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolve root_path: %v", err)), nil
	}

	results, err := s.ret.Search(ctx, pid, retriever.SearchOptions{
		Query:   query,
		Limit:   req.GetInt("limit", 10),
		Include: splitGlobs(req.GetString("include", "")),
		Exclude: splitGlobs(req.GetString("exclude", "")),
	})
	if err != nil {
		s.log.Error().Err(err).Str("root", root).Msg("search_code")
		return mcp.NewToolResultError(fmt.Sprintf("search_code failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatSearchResults(query, results)), nil
}

func (s *Server) handleGetStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := req.GetString("root_path", "")
	if root == "" {
		return mcp.NewToolResultError("root_path is required"), nil
	}

	pid, absRoot, err := resolveRoot(root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolve root_path: %v", err)), nil
	}

	stats, err := s.ret.GetStats(ctx, pid, absRoot)
	if err != nil {
		s.log.Error().Err(err).Str("root", root).Msg("get_stats")
		return mcp.NewToolResultError(fmt.Sprintf("get_stats failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatStats(stats)), nil
}

func (s *Server) handleFindDefinition(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol := req.GetString("symbol", "")
	root := req.GetString("root_path", "")
	if symbol == "" || root == "" {
		return mcp.NewToolResultError("symbol and root_path are required"), nil
	}

	pid, err := projectID(root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolve root_path: %v", err)), nil
	}

	candidates, err := s.ret.FindDefinition(pid, symbol, req.GetString("filename", ""), req.GetInt("line", 0))
	if err != nil {
		s.log.Error().Err(err).Str("root", root).Msg("find_definition")
		return mcp.NewToolResultError(fmt.Sprintf("find_definition failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatDefinitions(symbol, candidates)), nil
}

func (s *Server) handleFindReferences(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol := req.GetString("symbol", "")
	root := req.GetString("root_path", "")
	if symbol == "" || root == "" {
		return mcp.NewToolResultError("symbol and root_path are required"), nil
	}

	pid, err := projectID(root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolve root_path: %v", err)), nil
	}

	refs, err := s.ret.FindReferences(pid, symbol)
	if err != nil {
		s.log.Error().Err(err).Str("root", root).Msg("find_references")
		return mcp.NewToolResultError(fmt.Sprintf("find_references failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatReferences(symbol, refs)), nil
}

// resolveRoot absolutizes root relative to the server's own working
// directory and returns both its project id and its normalized absolute
// form, so the same project resolves identically regardless of the
// caller's cwd (matching the index CLI command's filepath.Abs call).
func resolveRoot(root string) (pid, absRoot string, err error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", "", fmt.Errorf("absolutize %s: %w", root, err)
	}
	absRoot = pathutil.Normalize(abs)
	return model.Project{}.ID(absRoot), absRoot, nil
}

func projectID(root string) (string, error) {
	pid, _, err := resolveRoot(root)
	return pid, err
}

func splitGlobs(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
