// Package store persists chunks in a per-project SQLite table paired
// with a sqlite-vec virtual table for dense vector search, plus small
// shared tables for file hashes and project metadata.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"codekg/internal/model"
	"codekg/internal/sanitize"
)

func init() {
	sqlite_vec.Auto()
}

// Store is the VectorStore: per-project chunk tables plus shared file-hash
// and metadata tables.
type Store struct {
	db *sql.DB
}

// Open creates or opens the store database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := initShared(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init shared schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// GetFileHash returns the stored content hash for filename in project,
// or "" if the file has never been indexed.
func (s *Store) GetFileHash(project, filename string) (string, error) {
	var hash string
	err := s.db.QueryRow(
		"SELECT hash FROM files WHERE project = ? AND filename = ?",
		project, filename,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", &model.StorageError{Op: "get_file_hash", Err: err}
	}
	return hash, nil
}

func (s *Store) setFileHash(tx *sql.Tx, project, filename, hash string) error {
	_, err := tx.Exec(
		`INSERT INTO files (project, filename, hash) VALUES (?, ?, ?)
		 ON CONFLICT(project, filename) DO UPDATE SET hash = excluded.hash`,
		project, filename, hash,
	)
	return err
}

// GetMeta returns a metadata value by key, or "" if unset.
func (s *Store) GetMeta(project, key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		"SELECT value FROM meta WHERE project = ? AND key = ?", project, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", &model.StorageError{Op: "get_meta", Err: err}
	}
	return value, nil
}

// SetMeta sets a project-scoped metadata key-value pair.
func (s *Store) SetMeta(project, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO meta (project, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(project, key) DO UPDATE SET value = excluded.value`,
		project, key, value,
	)
	if err != nil {
		return &model.StorageError{Op: "set_meta", Err: err}
	}
	return nil
}

// UpsertChunks deletes any existing rows in project whose filename
// matches one of the input chunks, then inserts the given chunks and
// their vectors, and records the new content hash for each distinct
// filename. dims sizes the vector table on first creation.
func (s *Store) UpsertChunks(project string, dims int, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := ensureProjectTables(s.db, project, dims); err != nil {
		return &model.StorageError{Op: "ensure_project_tables", Err: err}
	}

	filenames := map[string]struct{}{}
	for _, c := range chunks {
		filenames[c.Filename] = struct{}{}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &model.StorageError{Op: "upsert_chunks", Err: err}
	}
	defer tx.Rollback()

	for fn := range filenames {
		if err := s.deleteByFilename(tx, project, fn); err != nil {
			return &model.StorageError{Op: "upsert_chunks.delete", Err: err}
		}
	}

	insertChunk, err := tx.Prepare(fmt.Sprintf(
		`INSERT INTO %s (id, filename, language, symbol_name, symbol_kind, start_line, end_line,
		 content, signature, complexity, dependencies, author, last_modified, content_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chunkTable(project),
	))
	if err != nil {
		return &model.StorageError{Op: "upsert_chunks.prepare", Err: err}
	}
	defer insertChunk.Close()

	insertVec, err := tx.Prepare(fmt.Sprintf(
		`INSERT INTO %s (chunk_rowid, embedding) VALUES (?, ?)`, vecTable(project),
	))
	if err != nil {
		return &model.StorageError{Op: "upsert_chunks.prepare_vec", Err: err}
	}
	defer insertVec.Close()

	for _, c := range chunks {
		deps, err := json.Marshal(c.Dependencies)
		if err != nil {
			return &model.StorageError{Op: "upsert_chunks.marshal_deps", Err: err}
		}
		res, err := insertChunk.Exec(
			c.ID, c.Filename, c.Language, c.SymbolName, c.SymbolKind, c.StartLine, c.EndLine,
			c.Content, c.Signature, c.Complexity, string(deps), c.Author, c.LastModified, c.ContentHash,
		)
		if err != nil {
			return &model.StorageError{Op: "upsert_chunks.insert", Err: err}
		}
		rowid, err := res.LastInsertId()
		if err != nil {
			return &model.StorageError{Op: "upsert_chunks.rowid", Err: err}
		}

		if len(c.Vector) > 0 {
			blob, err := sqlite_vec.SerializeFloat32(c.Vector)
			if err != nil {
				return &model.StorageError{Op: "upsert_chunks.serialize_vector", Err: err}
			}
			if _, err := insertVec.Exec(rowid, blob); err != nil {
				return &model.StorageError{Op: "upsert_chunks.insert_vector", Err: err}
			}
		}
	}

	for fn := range filenames {
		hash := ""
		for _, c := range chunks {
			if c.Filename == fn {
				hash = c.ContentHash
				break
			}
		}
		if err := s.setFileHash(tx, project, fn, hash); err != nil {
			return &model.StorageError{Op: "upsert_chunks.set_hash", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &model.StorageError{Op: "upsert_chunks.commit", Err: err}
	}
	return nil
}

// deleteByFilename removes every chunk (and its vector row) belonging
// to filename within project. Callers must already be within a
// transaction.
func (s *Store) deleteByFilename(tx *sql.Tx, project, filename string) error {
	rows, err := tx.Query(fmt.Sprintf(
		"SELECT rowid FROM %s WHERE filename = ?", chunkTable(project),
	), filename)
	if err != nil {
		return err
	}
	var rowids []int64
	for rows.Next() {
		var r int64
		if err := rows.Scan(&r); err != nil {
			rows.Close()
			return err
		}
		rowids = append(rowids, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range rowids {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE chunk_rowid = ?", vecTable(project)), r); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE filename = ?", chunkTable(project)), filename); err != nil {
		return err
	}
	return nil
}

// FindChunkIDsByFilename returns the ids of every chunk currently stored
// for filename, so callers can clear their outgoing edges before the
// rows are replaced by a re-index.
func (s *Store) FindChunkIDsByFilename(project, filename string) ([]string, error) {
	exists, err := projectTableExists(s.db, project)
	if err != nil {
		return nil, &model.StorageError{Op: "find_ids_by_filename", Err: err}
	}
	if !exists {
		return nil, nil
	}

	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT id FROM %s WHERE filename = ?", chunkTable(project)), filename,
	)
	if err != nil {
		return nil, &model.StorageError{Op: "find_ids_by_filename", Err: err}
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &model.StorageError{Op: "find_ids_by_filename", Err: err}
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetChunkGitMeta updates the author/last_modified columns for one
// chunk, filled in asynchronously once GitMeta resolves them.
func (s *Store) SetChunkGitMeta(project, chunkID, author, lastModified string) error {
	exists, err := projectTableExists(s.db, project)
	if err != nil {
		return &model.StorageError{Op: "set_chunk_git_meta", Err: err}
	}
	if !exists {
		return nil
	}
	_, err = s.db.Exec(fmt.Sprintf(
		"UPDATE %s SET author = ?, last_modified = ? WHERE id = ?", chunkTable(project)),
		nullableString(author), nullableString(lastModified), chunkID,
	)
	if err != nil {
		return &model.StorageError{Op: "set_chunk_git_meta", Err: err}
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// DeleteProject drops the project's tables entirely.
func (s *Store) DeleteProject(project string) error {
	if err := dropProjectTables(s.db, project); err != nil {
		return &model.StorageError{Op: "delete_project", Err: err}
	}
	return nil
}

// Search returns up to limit chunks ordered by cosine distance to
// queryVector, optionally narrowed by extraFilter — a pre-sanitized SQL
// fragment ANDed into the WHERE clause (callers build it via
// internal/sanitize, never from raw user text).
func (s *Store) Search(project string, queryVector []float32, limit int, extraFilter string) ([]model.SearchResult, error) {
	exists, err := projectTableExists(s.db, project)
	if err != nil {
		return nil, &model.StorageError{Op: "search", Err: err}
	}
	if !exists {
		return nil, nil
	}

	blob, err := sqlite_vec.SerializeFloat32(queryVector)
	if err != nil {
		return nil, &model.StorageError{Op: "search.serialize_query", Err: err}
	}

	where := ""
	if extraFilter != "" {
		where = " AND " + extraFilter
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.filename, c.language, c.symbol_name, c.symbol_kind, c.start_line, c.end_line,
		       c.content, c.signature, c.complexity, c.dependencies, c.author, c.last_modified,
		       c.content_hash, v.distance
		FROM %s v
		JOIN %s c ON c.rowid = v.chunk_rowid
		WHERE v.embedding MATCH ? AND v.k = ?%s
		ORDER BY v.distance
	`, vecTable(project), chunkTable(project), where)

	rows, err := s.db.Query(query, blob, limit)
	if err != nil {
		return nil, &model.StorageError{Op: "search", Err: err}
	}
	defer rows.Close()

	var results []model.SearchResult
	for rows.Next() {
		c, distance, err := scanChunkRow(rows)
		if err != nil {
			return nil, &model.StorageError{Op: "search.scan", Err: err}
		}
		results = append(results, model.SearchResult{Chunk: c, Score: distance, MatchedBy: "vector"})
	}
	return results, rows.Err()
}

// scannable abstracts *sql.Row vs *sql.Rows for scanChunkRow.
type scannable interface {
	Scan(dest ...any) error
}

func scanChunkRow(row scannable) (model.Chunk, float64, error) {
	var c model.Chunk
	var deps string
	var distance float64
	err := row.Scan(
		&c.ID, &c.Filename, &c.Language, &c.SymbolName, &c.SymbolKind, &c.StartLine, &c.EndLine,
		&c.Content, &c.Signature, &c.Complexity, &deps, &c.Author, &c.LastModified,
		&c.ContentHash, &distance,
	)
	if err != nil {
		return c, 0, err
	}
	if deps != "" {
		_ = json.Unmarshal([]byte(deps), &c.Dependencies)
	}
	return c, distance, nil
}

// FindChunksBySymbol returns chunks whose symbol_name equals name,
// optionally narrowed to one filename.
func (s *Store) FindChunksBySymbol(project, name, filename string) ([]model.Chunk, error) {
	exists, err := projectTableExists(s.db, project)
	if err != nil {
		return nil, &model.StorageError{Op: "find_by_symbol", Err: err}
	}
	if !exists {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT id, filename, language, symbol_name, symbol_kind, start_line, end_line,
		 content, signature, complexity, dependencies, author, last_modified, content_hash
		 FROM %s WHERE symbol_name = ?`, chunkTable(project))
	args := []any{name}
	if filename != "" {
		query += " AND filename = ?"
		args = append(args, filename)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &model.StorageError{Op: "find_by_symbol", Err: err}
	}
	defer rows.Close()
	return scanChunks(rows)
}

// FindChunkByID returns the chunk with the given id, or nil if absent.
func (s *Store) FindChunkByID(project, id string) (*model.Chunk, error) {
	exists, err := projectTableExists(s.db, project)
	if err != nil {
		return nil, &model.StorageError{Op: "find_by_id", Err: err}
	}
	if !exists {
		return nil, nil
	}

	row := s.db.QueryRow(fmt.Sprintf(
		`SELECT id, filename, language, symbol_name, symbol_kind, start_line, end_line,
		 content, signature, complexity, dependencies, author, last_modified, content_hash
		 FROM %s WHERE id = ?`, chunkTable(project)), id)

	var c model.Chunk
	var deps string
	err = row.Scan(
		&c.ID, &c.Filename, &c.Language, &c.SymbolName, &c.SymbolKind, &c.StartLine, &c.EndLine,
		&c.Content, &c.Signature, &c.Complexity, &deps, &c.Author, &c.LastModified, &c.ContentHash,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &model.StorageError{Op: "find_by_id", Err: err}
	}
	if deps != "" {
		_ = json.Unmarshal([]byte(deps), &c.Dependencies)
	}
	return &c, nil
}

// FindChunksByFilename returns every chunk belonging to filename.
func (s *Store) FindChunksByFilename(project, filename string) ([]model.Chunk, error) {
	exists, err := projectTableExists(s.db, project)
	if err != nil {
		return nil, &model.StorageError{Op: "find_by_filename", Err: err}
	}
	if !exists {
		return nil, nil
	}

	rows, err := s.db.Query(fmt.Sprintf(
		`SELECT id, filename, language, symbol_name, symbol_kind, start_line, end_line,
		 content, signature, complexity, dependencies, author, last_modified, content_hash
		 FROM %s WHERE filename = ?`, chunkTable(project)), filename)
	if err != nil {
		return nil, &model.StorageError{Op: "find_by_filename", Err: err}
	}
	defer rows.Close()
	return scanChunks(rows)
}

// FindChunksContainingText returns up to limit chunks whose content
// contains literal, matched via LIKE (case-insensitive for ASCII
// letters, SQLite's default).
func (s *Store) FindChunksContainingText(project, literal string, limit int) ([]model.Chunk, error) {
	exists, err := projectTableExists(s.db, project)
	if err != nil {
		return nil, &model.StorageError{Op: "find_containing_text", Err: err}
	}
	if !exists {
		return nil, nil
	}

	escaped, err := sanitize.SanitizeLike(literal)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT id, filename, language, symbol_name, symbol_kind, start_line, end_line,
		 content, signature, complexity, dependencies, author, last_modified, content_hash
		 FROM %s WHERE content LIKE ? ESCAPE '\' LIMIT ?`, chunkTable(project))

	rows, err := s.db.Query(query, "%"+escaped+"%", limit)
	if err != nil {
		return nil, &model.StorageError{Op: "find_containing_text", Err: err}
	}
	defer rows.Close()
	return scanChunks(rows)
}

func scanChunks(rows *sql.Rows) ([]model.Chunk, error) {
	var out []model.Chunk
	for rows.Next() {
		var c model.Chunk
		var deps string
		if err := rows.Scan(
			&c.ID, &c.Filename, &c.Language, &c.SymbolName, &c.SymbolKind, &c.StartLine, &c.EndLine,
			&c.Content, &c.Signature, &c.Complexity, &deps, &c.Author, &c.LastModified, &c.ContentHash,
		); err != nil {
			return nil, err
		}
		if deps != "" {
			_ = json.Unmarshal([]byte(deps), &c.Dependencies)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Stats computes counts, language breakdown, dependency hubs, and
// high-complexity candidates for project. staleDays files not modified
// within staleDays are counted as stale; complexityThreshold gates the
// high-risk symbol list.
func (s *Store) Stats(project string, complexityThreshold, staleDays int) (model.Stats, error) {
	var stats model.Stats
	stats.LanguageCounts = map[string]int{}

	exists, err := projectTableExists(s.db, project)
	if err != nil {
		return stats, &model.StorageError{Op: "stats", Err: err}
	}
	if !exists {
		return stats, nil
	}

	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", chunkTable(project))).Scan(&stats.TotalChunks); err != nil {
		return stats, &model.StorageError{Op: "stats.count", Err: err}
	}

	langRows, err := s.db.Query(fmt.Sprintf("SELECT language, COUNT(*) FROM %s GROUP BY language", chunkTable(project)))
	if err != nil {
		return stats, &model.StorageError{Op: "stats.languages", Err: err}
	}
	for langRows.Next() {
		var lang string
		var count int
		if err := langRows.Scan(&lang, &count); err != nil {
			langRows.Close()
			return stats, &model.StorageError{Op: "stats.languages", Err: err}
		}
		stats.LanguageCounts[lang] = count
	}
	langRows.Close()

	depRows, err := s.db.Query(fmt.Sprintf("SELECT dependencies FROM %s", chunkTable(project)))
	if err != nil {
		return stats, &model.StorageError{Op: "stats.deps", Err: err}
	}
	depCounts := map[string]int{}
	for depRows.Next() {
		var raw string
		if err := depRows.Scan(&raw); err != nil {
			depRows.Close()
			return stats, &model.StorageError{Op: "stats.deps", Err: err}
		}
		var deps []string
		if raw != "" {
			_ = json.Unmarshal([]byte(raw), &deps)
		}
		for _, d := range deps {
			depCounts[d]++
		}
	}
	depRows.Close()
	stats.TopDependencies = topDependencies(depCounts, 10)

	highRiskRows, err := s.db.Query(fmt.Sprintf(
		`SELECT id, filename, language, symbol_name, symbol_kind, start_line, end_line,
		 content, signature, complexity, dependencies, author, last_modified, content_hash
		 FROM %s WHERE complexity >= ? ORDER BY complexity DESC LIMIT 20`, chunkTable(project)),
		complexityThreshold,
	)
	if err != nil {
		return stats, &model.StorageError{Op: "stats.high_risk", Err: err}
	}
	candidates, err := scanChunks(highRiskRows)
	highRiskRows.Close()
	if err != nil {
		return stats, &model.StorageError{Op: "stats.high_risk", Err: err}
	}
	untested, err := s.filterNoSiblingTest(project, candidates)
	if err != nil {
		return stats, &model.StorageError{Op: "stats.high_risk", Err: err}
	}
	stats.HighRiskSymbols = untested

	staleCount, err := s.countStaleFiles(project, staleDays)
	if err != nil {
		return stats, &model.StorageError{Op: "stats.stale", Err: err}
	}
	stats.StaleFileCount = staleCount

	return stats, nil
}

func topDependencies(counts map[string]int, n int) []model.DependencyCount {
	out := make([]model.DependencyCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, model.DependencyCount{Name: name, Count: count})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Count > out[j-1].Count; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// filterNoSiblingTest keeps only chunks from files with no sibling test
// file, per the get_stats "high-risk" definition: high complexity AND
// untested. A sibling test file is any indexed file under the same
// directory, subdirectories included, whose path below that directory
// contains "test" (a heuristic shared across languages rather than a
// per-language test-discovery convention).
func (s *Store) filterNoSiblingTest(project string, chunks []model.Chunk) ([]model.Chunk, error) {
	dirHasTest := map[string]bool{}
	var out []model.Chunk
	for _, c := range chunks {
		dir := dirOf(c.Filename)
		hasTest, ok := dirHasTest[dir]
		if !ok {
			var err error
			hasTest, err = s.dirHasTestFile(project, dir)
			if err != nil {
				return nil, err
			}
			dirHasTest[dir] = hasTest
		}
		if !hasTest {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) dirHasTestFile(project, dir string) (bool, error) {
	pattern := dir + "/%test%"
	if dir == "" {
		pattern = "%test%"
	}
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM files WHERE project = ? AND filename LIKE ? ESCAPE '\\'",
		project, pattern,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// countStaleFiles returns the number of distinct indexed files whose
// recorded last_modified is at least staleDays old, read from the chunk
// table's last_modified column (filled asynchronously by GitMeta) rather
// than a filesystem stat. Files with no recorded last_modified are not
// counted. Only the leading "YYYY-MM-DD HH:MM:SS" of the value is
// parsed, so git's numeric UTC offset is ignored.
func (s *Store) countStaleFiles(project string, staleDays int) (int, error) {
	exists, err := projectTableExists(s.db, project)
	if err != nil || !exists {
		return 0, err
	}
	var count int
	err = s.db.QueryRow(fmt.Sprintf(
		`SELECT COUNT(DISTINCT filename) FROM %s
		 WHERE last_modified IS NOT NULL
		 AND julianday('now') - julianday(substr(last_modified, 1, 19)) >= ?`,
		chunkTable(project)), staleDays,
	).Scan(&count)
	return count, err
}

func dirOf(filename string) string {
	idx := strings.LastIndex(filename, "/")
	if idx < 0 {
		return ""
	}
	return filename[:idx]
}
