// Package graph persists the symbol-level knowledge graph: edges between
// chunk ids, scoped per project, with a confidence tag.
package graph

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"codekg/internal/model"
)

// KnowledgeGraph is a single edges table shared across all projects,
// scoped by the project column on every operation.
type KnowledgeGraph struct {
	db *sql.DB
}

// Open creates or opens the graph database at dbPath and ensures its
// schema exists.
func Open(dbPath string) (*KnowledgeGraph, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open knowledge graph: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS edges (
			source_id TEXT,
			target_id TEXT,
			kind TEXT,
			confidence TEXT,
			project TEXT,
			PRIMARY KEY (source_id, target_id, kind)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init knowledge graph schema: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_source ON edges(project, source_id)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init source index: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_target ON edges(project, target_id)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init target index: %w", err)
	}
	return &KnowledgeGraph{db: db}, nil
}

// AddEdge upserts a single edge.
func (g *KnowledgeGraph) AddEdge(project string, e model.Edge) error {
	_, err := g.db.Exec(
		`INSERT INTO edges (source_id, target_id, kind, confidence, project) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source_id, target_id, kind) DO UPDATE SET confidence = excluded.confidence`,
		e.SourceID, e.TargetID, e.Kind, e.Confidence, project,
	)
	if err != nil {
		return &model.StorageError{Op: "add_edge", Err: err}
	}
	return nil
}

// AddEdges batch-inserts edges within a single transaction, the unit of
// work Pass 2 uses per file.
func (g *KnowledgeGraph) AddEdges(project string, edges []model.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	tx, err := g.db.Begin()
	if err != nil {
		return &model.StorageError{Op: "add_edges", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO edges (source_id, target_id, kind, confidence, project) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source_id, target_id, kind) DO UPDATE SET confidence = excluded.confidence`,
	)
	if err != nil {
		return &model.StorageError{Op: "add_edges", Err: err}
	}
	defer stmt.Close()

	for _, e := range edges {
		if _, err := stmt.Exec(e.SourceID, e.TargetID, e.Kind, e.Confidence, project); err != nil {
			return &model.StorageError{Op: "add_edges", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &model.StorageError{Op: "add_edges", Err: err}
	}
	return nil
}

// EdgesFrom returns edges whose source is src, ordered by target id.
func (g *KnowledgeGraph) EdgesFrom(project, src string) ([]model.Edge, error) {
	rows, err := g.db.Query(
		`SELECT source_id, target_id, kind, confidence FROM edges
		 WHERE project = ? AND source_id = ? ORDER BY target_id`,
		project, src,
	)
	if err != nil {
		return nil, &model.StorageError{Op: "edges_from", Err: err}
	}
	defer rows.Close()
	return scanEdges(rows, project)
}

// EdgesTo returns edges whose target is tgt, ordered by source id.
func (g *KnowledgeGraph) EdgesTo(project, tgt string) ([]model.Edge, error) {
	rows, err := g.db.Query(
		`SELECT source_id, target_id, kind, confidence FROM edges
		 WHERE project = ? AND target_id = ? ORDER BY source_id`,
		project, tgt,
	)
	if err != nil {
		return nil, &model.StorageError{Op: "edges_to", Err: err}
	}
	defer rows.Close()
	return scanEdges(rows, project)
}

func scanEdges(rows *sql.Rows, project string) ([]model.Edge, error) {
	var edges []model.Edge
	for rows.Next() {
		var e model.Edge
		if err := rows.Scan(&e.SourceID, &e.TargetID, &e.Kind, &e.Confidence); err != nil {
			return nil, &model.StorageError{Op: "scan_edge", Err: err}
		}
		e.Project = project
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.StorageError{Op: "scan_edges", Err: err}
	}
	return edges, nil
}

// ClearProject deletes every edge belonging to project.
func (g *KnowledgeGraph) ClearProject(project string) error {
	if _, err := g.db.Exec("DELETE FROM edges WHERE project = ?", project); err != nil {
		return &model.StorageError{Op: "clear_project", Err: err}
	}
	return nil
}

// ClearSourceFiles deletes edges whose source chunk id was produced by
// one of the given filenames. sourceIDs is the set of chunk ids
// belonging to those files — callers compute it from the VectorStore
// since the graph itself has no notion of filenames.
func (g *KnowledgeGraph) ClearSourceFiles(project string, sourceIDs []string) error {
	if len(sourceIDs) == 0 {
		return nil
	}
	tx, err := g.db.Begin()
	if err != nil {
		return &model.StorageError{Op: "clear_source_files", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("DELETE FROM edges WHERE project = ? AND source_id = ?")
	if err != nil {
		return &model.StorageError{Op: "clear_source_files", Err: err}
	}
	defer stmt.Close()

	for _, id := range sourceIDs {
		if _, err := stmt.Exec(project, id); err != nil {
			return &model.StorageError{Op: "clear_source_files", Err: err}
		}
	}
	return tx.Commit()
}

// Close closes the underlying database handle.
func (g *KnowledgeGraph) Close() error {
	return g.db.Close()
}
