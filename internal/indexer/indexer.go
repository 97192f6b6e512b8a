// Package indexer orchestrates the two-pass indexing pipeline: Pass 1
// parses, embeds, and upserts chunks per file while clearing that
// file's outgoing edges; Pass 2 resolves every usage recorded in Pass 1
// against the VectorStore once every chunk in the project exists, and
// writes the resulting edges to the knowledge graph.
// Git metadata is enriched afterward on a bounded, best-effort side
// channel.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"codekg/internal/embedder"
	"codekg/internal/gitmeta"
	"codekg/internal/graph"
	"codekg/internal/model"
	"codekg/internal/parser"
	"codekg/internal/pathutil"
	"codekg/internal/rank"
	"codekg/internal/resolve"
	"codekg/internal/store"
	"codekg/internal/walker"
)

const defaultGitConcurrent = 10

// Indexer wires the Parser, Embedder, VectorStore, and KnowledgeGraph
// into the refresh_index operation.
type Indexer struct {
	store      *store.Store
	graph      *graph.KnowledgeGraph
	embedder   *embedder.Embedder
	dispatcher *parser.Dispatcher
	vectorDim  int
	gitMax     int
	log        zerolog.Logger
}

// New creates an Indexer. vectorDim sizes each project's vector table
// on first creation; gitMaxConcurrent bounds GitMeta subprocesses
// (0 uses the spec default of 10).
func New(s *store.Store, g *graph.KnowledgeGraph, e *embedder.Embedder, d *parser.Dispatcher, vectorDim, gitMaxConcurrent int, log zerolog.Logger) *Indexer {
	if gitMaxConcurrent <= 0 {
		gitMaxConcurrent = defaultGitConcurrent
	}
	return &Indexer{store: s, graph: g, embedder: e, dispatcher: d, vectorDim: vectorDim, gitMax: gitMaxConcurrent, log: log}
}

// RefreshOptions parametrizes one refresh_index call.
type RefreshOptions struct {
	Root      string
	ForceFull bool
	Include   []string
	Exclude   []string
}

// fileState carries one file's Pass 1 output forward into Pass 2,
// avoiding a second parse per spec's "SHOULD be cached in memory"
// recommendation.
type fileState struct {
	relPath string
	lang    string
	chunks  []model.Chunk
	usages  []model.Usage
}

// Refresh runs Discover → Pass 1 → Pass 2 → GitMeta enrichment for one
// project root.
func (idx *Indexer) Refresh(ctx context.Context, opts RefreshOptions) (*model.RefreshStats, error) {
	start := time.Now()
	stats := &model.RefreshStats{}

	absoluteRoot, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute root %s: %w", opts.Root, err)
	}
	absRoot := pathutil.Normalize(absoluteRoot)
	project := model.Project{}.ID(absRoot)

	scope := walker.Scope{Include: opts.Include, Exclude: opts.Exclude}
	fileCh, walkErrCh := walker.Walk(opts.Root, idx.dispatcher.Extensions(), scope)

	var states []*fileState
	for fi := range fileCh {
		src, err := os.ReadFile(fi.Path)
		if err != nil {
			stats.Errors = append(stats.Errors, model.FileError{File: fi.RelPath, Kind: "read", Msg: err.Error()})
			continue
		}

		sum := sha256.Sum256(src)
		contentHash := hex.EncodeToString(sum[:])

		if !opts.ForceFull {
			existing, err := idx.store.GetFileHash(project, fi.RelPath)
			if err == nil && existing == contentHash {
				stats.Skipped++
				continue
			}
		}

		st, err := idx.indexFile(ctx, project, fi.RelPath, src, contentHash)
		if err != nil {
			var parseErr *model.ParseError
			var embedErr *model.EmbeddingError
			switch {
			case errors.As(err, &parseErr):
				stats.Errors = append(stats.Errors, model.FileError{File: fi.RelPath, Kind: "parse", Msg: err.Error()})
				continue
			case errors.As(err, &embedErr):
				stats.Errors = append(stats.Errors, model.FileError{File: fi.RelPath, Kind: "embedding", Msg: err.Error()})
				continue
			default:
				stats.Errors = append(stats.Errors, model.FileError{File: fi.RelPath, Kind: "storage", Msg: err.Error()})
				return stats, err
			}
		}

		states = append(states, st)
		stats.Indexed++
		stats.Chunks += len(st.chunks)
	}

	if err := <-walkErrCh; err != nil {
		return stats, fmt.Errorf("walk %s: %w", opts.Root, err)
	}

	if err := idx.linkUsages(ctx, project, absRoot, states); err != nil {
		return stats, fmt.Errorf("link usages: %w", err)
	}

	// GitMeta is a best-effort side channel (spec §4.9.5): detach it onto
	// its own context so a slow repo's git subprocesses never delay the
	// refresh_index result itself.
	go idx.enrichGitMeta(context.Background(), project, absRoot, states)

	stats.ElapsedMS = time.Since(start).Milliseconds()
	return stats, nil
}

// indexFile runs Pass 1 for one file: parse, embed, upsert, and clear
// its previously recorded outgoing edges.
func (idx *Indexer) indexFile(ctx context.Context, project, relPath string, src []byte, contentHash string) (*fileState, error) {
	chunks, usages, err := idx.dispatcher.ChunkFile(relPath, src)
	if err != nil {
		return nil, err
	}

	oldIDs, err := idx.store.FindChunkIDsByFilename(project, relPath)
	if err != nil {
		return nil, err
	}
	if err := idx.graph.ClearSourceFiles(project, oldIDs); err != nil {
		return nil, err
	}

	lang := ""
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		chunks[i].ContentHash = contentHash
		texts[i] = c.Content
		lang = c.Language
	}

	if len(chunks) > 0 {
		vectors, err := idx.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, err
		}
		for i := range chunks {
			chunks[i].Vector = vectors[i]
		}
	}

	if err := idx.store.UpsertChunks(project, idx.vectorDim, chunks); err != nil {
		return nil, err
	}

	return &fileState{relPath: relPath, lang: lang, chunks: chunks, usages: usages}, nil
}

// linkUsages is Pass 2: every usage recorded during Pass 1 is resolved
// against the VectorStore, not just the files re-parsed this pass, so a
// usage in a changed file can still resolve to a definition in a file
// the hash-compare skipped (spec step 4a's "look up the name within
// that file" is a store lookup, not an in-memory one — an incremental
// pass must see every chunk, not only this pass's).
func (idx *Indexer) linkUsages(ctx context.Context, project, absRoot string, states []*fileState) error {
	for _, st := range states {
		if len(st.usages) == 0 {
			continue
		}
		resolver := resolve.ForLanguage(st.lang)
		deps := dependenciesOf(st.chunks)

		var edges []model.Edge
		for _, u := range st.usages {
			edge, err := idx.resolveUsage(project, absRoot, st, u, resolver, deps)
			if err != nil {
				idx.log.Debug().Err(err).Str("file", st.relPath).Msg("resolve usage")
				continue
			}
			if edge != nil {
				edges = append(edges, *edge)
			}
		}
		if err := idx.graph.AddEdges(project, edges); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Indexer) resolveUsage(
	project, absRoot string,
	st *fileState,
	u model.Usage,
	resolver resolve.Resolver,
	deps []string,
) (*model.Edge, error) {
	kind := usageEdgeKind(u.Kind)

	// (a) resolve via an import in the same file.
	if resolver != nil {
		absSource := path.Join(absRoot, st.relPath)
		for _, dep := range deps {
			target := resolver.Resolve(absSource, dep, absRoot)
			if target == "" {
				continue
			}
			relTarget := pathutil.Rel(absRoot, target)
			candidates, err := idx.store.FindChunksBySymbol(project, u.ReferencedName, relTarget)
			if err != nil {
				return nil, err
			}
			if len(candidates) > 0 {
				return &model.Edge{SourceID: u.ContainingChunkID, TargetID: candidates[0].ID, Kind: kind, Confidence: model.ConfidenceStructural, Project: project}, nil
			}
		}
	}

	// (b) same-file lookup.
	sameFile, err := idx.store.FindChunksBySymbol(project, u.ReferencedName, st.relPath)
	if err != nil {
		return nil, err
	}
	for _, c := range sameFile {
		if c.ID != u.ContainingChunkID {
			return &model.Edge{SourceID: u.ContainingChunkID, TargetID: c.ID, Kind: kind, Confidence: model.ConfidenceStructural, Project: project}, nil
		}
	}

	// (c) project-global, same-language fallback, tied broken by file priority.
	allMatches, err := idx.store.FindChunksBySymbol(project, u.ReferencedName, "")
	if err != nil {
		return nil, err
	}
	var sameLang []model.Chunk
	for _, c := range allMatches {
		if c.Language == st.lang {
			sameLang = append(sameLang, c)
		}
	}
	if best := pickByPriority(sameLang); best != nil {
		return &model.Edge{SourceID: u.ContainingChunkID, TargetID: best.ID, Kind: kind, Confidence: model.ConfidenceNameMatch, Project: project}, nil
	}

	return nil, nil
}

func usageEdgeKind(usageKind string) string {
	switch usageKind {
	case model.UsageCall:
		return model.EdgeCall
	case model.UsageDecorator:
		return model.EdgeDecorator
	case model.UsageInstantiation:
		return model.EdgeInstantiate
	default:
		return model.EdgeReference
	}
}

func dependenciesOf(chunks []model.Chunk) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range chunks {
		for _, d := range c.Dependencies {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}

// pickByPriority returns the candidate whose owning file has the lowest
// (best) file priority, ties broken by id for stability, or nil if
// candidates is empty.
func pickByPriority(candidates []model.Chunk) *model.Chunk {
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		pi, pj := rank.FilePriority(candidates[i].Filename), rank.FilePriority(candidates[j].Filename)
		if pi != pj {
			return pi < pj
		}
		return candidates[i].ID < candidates[j].ID
	})
	return &candidates[0]
}

// enrichGitMeta fetches author/last_modified for every re-indexed file,
// bounded by a semaphore, and writes the results back onto their
// chunks. Failures are logged and otherwise ignored: git metadata is
// never required for an index pass to succeed.
func (idx *Indexer) enrichGitMeta(ctx context.Context, project, absRoot string, states []*fileState) {
	if len(states) == 0 {
		return
	}
	fetcher := gitmeta.New(absRoot, idx.gitMax)

	paths := make([]string, len(states))
	for i, st := range states {
		paths[i] = st.relPath
	}
	infos := fetcher.FetchBatch(ctx, paths)

	for _, st := range states {
		info := infos[st.relPath]
		if info.Author == "" && info.LastModified == "" {
			continue
		}
		for _, c := range st.chunks {
			if err := idx.store.SetChunkGitMeta(project, c.ID, info.Author, info.LastModified); err != nil {
				idx.log.Warn().Err(err).Str("file", st.relPath).Msg("set git meta")
			}
		}
	}
}
