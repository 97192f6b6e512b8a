// Package rank holds the file-priority tiebreaker shared by the
// Indexer's name-match fallback and the Retriever's rerank step: lower
// numbers win, source directories first, docs last.
package rank

import "strings"

const (
	prioritySource = 0
	priorityOther  = 1
	priorityTest   = 2
	priorityDocs   = 3
)

var sourceDirs = []string{"src/", "lib/", "app/"}

// FilePriority ranks a project-root-relative, forward-slash path for
// retrieval/link tiebreaking. The exact numbering is implementation
// defined; only the relative order (source < other < test < docs) is
// required to be stable.
func FilePriority(path string) int {
	lower := strings.ToLower(path)

	if strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".mdx") {
		return priorityDocs
	}
	if isTestPath(lower) {
		return priorityTest
	}
	for _, dir := range sourceDirs {
		if strings.HasPrefix(lower, dir) || strings.Contains(lower, "/"+dir) {
			return prioritySource
		}
	}
	return priorityOther
}

func isTestPath(lower string) bool {
	if strings.Contains(lower, "/test/") || strings.Contains(lower, "/tests/") ||
		strings.HasPrefix(lower, "test/") || strings.HasPrefix(lower, "tests/") {
		return true
	}
	base := lower
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.Contains(base, "test")
}
