// Package retriever implements the hybrid search, definition lookup,
// reference lookup, and stats operations that sit in front of the
// VectorStore and KnowledgeGraph.
package retriever

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"codekg/internal/embedder"
	"codekg/internal/gitmeta"
	"codekg/internal/graph"
	"codekg/internal/model"
	"codekg/internal/rank"
	"codekg/internal/store"
	"codekg/internal/walker"
)

const (
	minLimit            = 1
	maxLimit            = 100
	maxKeywords         = 3
	keywordFetchLimit   = 20
	globFetchMultiplier = 5
	highRiskComplexity  = 10
	staleDays           = 30
)

var keywordPattern = regexp.MustCompile(`\b[A-Z]{3,}\b|\b[A-Za-z]{6,}\b`)

// Retriever answers the four read queries against one project's store
// and graph.
type Retriever struct {
	store    *store.Store
	graph    *graph.KnowledgeGraph
	embedder *embedder.Embedder
}

// New creates a Retriever.
func New(s *store.Store, g *graph.KnowledgeGraph, e *embedder.Embedder) *Retriever {
	return &Retriever{store: s, graph: g, embedder: e}
}

// SearchOptions parametrizes a hybrid search call.
type SearchOptions struct {
	Query   string
	Limit   int
	Include []string
	Exclude []string
}

// Search runs vector search combined with keyword fallback, post-filters
// by glob scope, and reranks by language match and file priority.
func (r *Retriever) Search(ctx context.Context, project string, opts SearchOptions) ([]model.SearchResult, error) {
	limit := clampLimit(opts.Limit)
	scope := walker.Scope{Include: opts.Include, Exclude: opts.Exclude}
	hasGlobFilter := len(opts.Include) > 0 || len(opts.Exclude) > 0

	fetchLimit := limit
	if hasGlobFilter {
		fetchLimit = limit * globFetchMultiplier
	}

	vectors, err := r.embedder.Embed(ctx, []string{opts.Query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	vecResults, err := r.store.Search(project, vectors[0], fetchLimit, "")
	if err != nil {
		return nil, err
	}

	merged := map[string]model.SearchResult{}
	order := make([]string, 0, len(vecResults))
	for _, res := range vecResults {
		merged[res.Chunk.ID] = res
		order = append(order, res.Chunk.ID)
	}

	for _, kw := range extractKeywords(opts.Query) {
		hits, err := r.store.FindChunksContainingText(project, kw, keywordFetchLimit)
		if err != nil {
			continue // keyword fallback is best-effort; a sanitizer rejection must not fail the whole search
		}
		for _, c := range hits {
			if _, ok := merged[c.ID]; ok {
				continue // prefer the vector score already present
			}
			merged[c.ID] = model.SearchResult{Chunk: c, MatchedBy: "keyword"}
			order = append(order, c.ID)
		}
	}

	var filtered []model.SearchResult
	for _, id := range order {
		res := merged[id]
		if !scope.Allows(res.Chunk.Filename) {
			continue
		}
		filtered = append(filtered, res)
	}

	queryLang := inferLanguage(opts.Query)
	sort.SliceStable(filtered, func(i, j int) bool {
		li := filtered[i].Chunk.Language == queryLang
		lj := filtered[j].Chunk.Language == queryLang
		if li != lj {
			return li
		}
		return rank.FilePriority(filtered[i].Chunk.Filename) < rank.FilePriority(filtered[j].Chunk.Filename)
	})

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// clampLimit enforces the [1, 100] bound on a requested result count.
func clampLimit(limit int) int {
	if limit < minLimit {
		return minLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// extractKeywords pulls up to maxKeywords ALL-CAPS-3+ or 6+ letter
// words out of a free-text query for the text-LIKE fallback.
func extractKeywords(query string) []string {
	matches := keywordPattern.FindAllString(query, -1)
	if len(matches) > maxKeywords {
		matches = matches[:maxKeywords]
	}
	return matches
}

// inferLanguage guesses the query's intended source language from
// mentions of a known language tag, for the rerank's language-match key.
func inferLanguage(query string) string {
	lower := strings.ToLower(query)
	for _, lang := range []string{
		model.LangPython, model.LangJavaScript, model.LangTypeScript, model.LangGo,
		model.LangRust, model.LangJava, model.LangCPP, model.LangDart, model.LangSQL,
	} {
		if strings.Contains(lower, lang) {
			return lang
		}
	}
	return ""
}

// FindDefinition resolves a symbol's definition. When filename/line
// identify a specific usage site, its outgoing edges are followed
// first; otherwise (or if none exist) a project-wide symbol-name
// lookup is used, reranked by file priority.
func (r *Retriever) FindDefinition(project, symbol, filename string, line int) ([]model.DefinitionCandidate, error) {
	if filename != "" && line > 0 {
		usageChunkID, err := r.chunkContaining(project, filename, line)
		if err == nil && usageChunkID != "" {
			edges, err := r.graph.EdgesFrom(project, usageChunkID)
			if err != nil {
				return nil, err
			}
			if len(edges) > 0 {
				return r.candidatesFromEdges(project, edges)
			}
		}
	}

	chunks, err := r.store.FindChunksBySymbol(project, symbol, "")
	if err != nil {
		return nil, err
	}
	sortChunksByPriority(chunks)

	candidates := make([]model.DefinitionCandidate, len(chunks))
	for i, c := range chunks {
		candidates[i] = model.DefinitionCandidate{Chunk: c, Confidence: model.ConfidenceNameMatch}
	}
	return candidates, nil
}

// FindReferences returns every chunk that refers to symbol, preferring
// structural edges and falling back to a text search when none exist.
func (r *Retriever) FindReferences(project, symbol string) ([]model.ReferenceResult, error) {
	targets, err := r.store.FindChunksBySymbol(project, symbol, "")
	if err != nil {
		return nil, err
	}

	var results []model.ReferenceResult
	seen := map[string]bool{}
	for _, t := range targets {
		edges, err := r.graph.EdgesTo(project, t.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			if seen[e.SourceID] {
				continue
			}
			seen[e.SourceID] = true
			src, err := r.chunkByID(project, e.SourceID)
			if err != nil || src == nil {
				continue
			}
			results = append(results, model.ReferenceResult{Chunk: *src, Kind: e.Kind, Confidence: e.Confidence})
		}
	}

	if len(results) > 0 {
		return results, nil
	}

	hits, err := r.store.FindChunksContainingText(project, symbol, keywordFetchLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range hits {
		results = append(results, model.ReferenceResult{Chunk: c, Kind: model.EdgeReference, Confidence: model.ConfidenceNameMatch})
	}
	return results, nil
}

// GetStats returns project-wide counts, dependency hubs, and
// high-risk-symbol candidates from the VectorStore, plus the active
// branch read live from absRoot.
func (r *Retriever) GetStats(ctx context.Context, project, absRoot string) (model.Stats, error) {
	stats, err := r.store.Stats(project, highRiskComplexity, staleDays)
	if err != nil {
		return stats, err
	}
	stats.ActiveBranch = gitmeta.New(absRoot, 0).ActiveBranch(ctx)
	return stats, nil
}

func (r *Retriever) candidatesFromEdges(project string, edges []model.Edge) ([]model.DefinitionCandidate, error) {
	var out []model.DefinitionCandidate
	for _, e := range edges {
		c, err := r.chunkByID(project, e.TargetID)
		if err != nil || c == nil {
			continue
		}
		out = append(out, model.DefinitionCandidate{Chunk: *c, Confidence: e.Confidence})
	}
	return out, nil
}

func (r *Retriever) chunkByID(project, id string) (*model.Chunk, error) {
	return r.store.FindChunkByID(project, id)
}

func (r *Retriever) chunkContaining(project, filename string, line int) (string, error) {
	chunks, err := r.store.FindChunksByFilename(project, filename)
	if err != nil {
		return "", err
	}
	best := ""
	bestStart := -1
	for _, c := range chunks {
		if c.StartLine <= line && line <= c.EndLine && c.StartLine > bestStart {
			best = c.ID
			bestStart = c.StartLine
		}
	}
	return best, nil
}

func sortChunksByPriority(chunks []model.Chunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		return rank.FilePriority(chunks[i].Filename) < rank.FilePriority(chunks[j].Filename)
	})
}
