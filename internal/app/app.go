// Package app wires config, logging, storage, and the indexing/
// retrieval pipeline into the single context object the command layer
// runs against.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"codekg/internal/cache"
	"codekg/internal/config"
	"codekg/internal/embedder"
	"codekg/internal/graph"
	"codekg/internal/indexer"
	"codekg/internal/parser"
	"codekg/internal/retriever"
	"codekg/internal/store"
)

// App holds every long-lived handle a command needs. There is no
// process-global mutable state: each App instance is self-contained and
// keyed by nothing beyond the config it was built from.
type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	Store     *store.Store
	Graph     *graph.KnowledgeGraph
	Cache     *cache.EmbeddingCache
	Embedder  *embedder.Embedder
	Indexer   *indexer.Indexer
	Retriever *retriever.Retriever
}

// New loads configuration, opens every backing store, and assembles the
// Indexer and Retriever. Callers must call Close when done.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("ensure storage dirs: %w", err)
	}

	log, err := applogLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("open logger: %w", err)
	}

	st, err := store.Open(cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	g, err := graph.Open(cfg.KnowledgeGraphPath())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open graph: %w", err)
	}

	ec, err := cache.Open(cfg.CachePath())
	if err != nil {
		st.Close()
		g.Close()
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}

	embedderMax := cfg.EmbedderMaxConcurrent
	if embedderMax <= 0 {
		embedderMax = embedder.DefaultMaxConcurrent
	}
	emb := embedder.New(cfg.EmbeddingEndpoint, cfg.EmbeddingModel, cfg.VectorDim, ec, embedder.WithMaxConcurrent(embedderMax))

	dispatcher := parser.NewDispatcher()

	idx := indexer.New(st, g, emb, dispatcher, cfg.VectorDim, cfg.GitMaxConcurrent, log)
	ret := retriever.New(st, g, emb)

	return &App{
		Config:    cfg,
		Log:       log,
		Store:     st,
		Graph:     g,
		Cache:     ec,
		Embedder:  emb,
		Indexer:   idx,
		Retriever: ret,
	}, nil
}

// Close releases every backing store handle.
func (a *App) Close() {
	a.Store.Close()
	a.Graph.Close()
	a.Cache.Close()
}
