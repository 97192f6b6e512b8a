package store

import (
	"database/sql"
	"fmt"
	"regexp"
)

const sharedDDL = `
PRAGMA journal_mode=WAL;
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS files (
    project    TEXT NOT NULL,
    filename   TEXT NOT NULL,
    hash       TEXT NOT NULL,
    PRIMARY KEY (project, filename)
);

CREATE TABLE IF NOT EXISTS meta (
    project TEXT NOT NULL,
    key     TEXT NOT NULL,
    value   TEXT NOT NULL,
    PRIMARY KEY (project, key)
);
`

// projectIDPattern validates a project id before it is ever interpolated
// into a dynamic table name — project ids are always the 32-hex-char
// output of model.Project.ID, never raw user input, but this check is
// cheap insurance in either direction.
var projectIDPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func validProjectID(id string) bool {
	return projectIDPattern.MatchString(id)
}

func chunkTable(project string) string { return "t_" + project }
func vecTable(project string) string   { return "t_" + project + "_vec" }

// initShared creates the cross-project files/meta tables.
func initShared(db *sql.DB) error {
	_, err := db.Exec(sharedDDL)
	return err
}

// ensureProjectTables creates the per-project scalar and vector tables
// if they do not already exist, sized for dims-wide embeddings.
func ensureProjectTables(db *sql.DB, project string, dims int) error {
	if !validProjectID(project) {
		return fmt.Errorf("invalid project id %q", project)
	}
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    rowid         INTEGER PRIMARY KEY AUTOINCREMENT,
    id            TEXT UNIQUE NOT NULL,
    filename      TEXT NOT NULL,
    language      TEXT NOT NULL DEFAULT '',
    symbol_name   TEXT NOT NULL,
    symbol_kind   TEXT NOT NULL DEFAULT '',
    start_line    INTEGER NOT NULL,
    end_line      INTEGER NOT NULL,
    content       TEXT NOT NULL,
    signature     TEXT NOT NULL DEFAULT '',
    complexity    INTEGER NOT NULL DEFAULT 1,
    dependencies  TEXT NOT NULL DEFAULT '[]',
    author        TEXT,
    last_modified TEXT,
    content_hash  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_%s_filename ON %s(filename);
CREATE INDEX IF NOT EXISTS idx_%s_symbol ON %s(symbol_name);
`, chunkTable(project), project, chunkTable(project), project, chunkTable(project))
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create chunk table: %w", err)
	}

	vecDDL := fmt.Sprintf(`
CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(
    chunk_rowid INTEGER PRIMARY KEY,
    embedding float[%d] distance_metric=cosine
);
`, vecTable(project), dims)
	if _, err := db.Exec(vecDDL); err != nil {
		return fmt.Errorf("create vector table: %w", err)
	}
	return nil
}

// projectTableExists reports whether the project's chunk table has ever
// been created, without creating it. Every read path MUST consult this
// first so a query against an unindexed project returns an empty result
// instead of silently materializing an empty table.
func projectTableExists(db *sql.DB, project string) (bool, error) {
	if !validProjectID(project) {
		return false, fmt.Errorf("invalid project id %q", project)
	}
	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		chunkTable(project),
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func dropProjectTables(db *sql.DB, project string) error {
	if !validProjectID(project) {
		return fmt.Errorf("invalid project id %q", project)
	}
	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", vecTable(project))); err != nil {
		return err
	}
	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", chunkTable(project))); err != nil {
		return err
	}
	if _, err := db.Exec("DELETE FROM files WHERE project = ?", project); err != nil {
		return err
	}
	if _, err := db.Exec("DELETE FROM meta WHERE project = ?", project); err != nil {
		return err
	}
	return nil
}
