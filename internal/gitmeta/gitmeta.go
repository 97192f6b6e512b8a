// Package gitmeta fetches per-file author/last-modified metadata from a
// git subprocess, bounded by a semaphore so a large batch never spawns
// an unbounded number of child processes. Failures are non-fatal: a
// file simply keeps nil author/last_modified fields.
package gitmeta

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	defaultMaxConcurrent = 10
	repoCheckTimeout     = 5 * time.Second
	fileLookupTimeout    = 10 * time.Second
)

// Info is the git-derived metadata for one file.
type Info struct {
	Author       string
	LastModified string
}

// Fetcher runs bounded-concurrency git subprocesses against one
// repository root.
type Fetcher struct {
	repoRoot string
	gate     *semaphore.Weighted
}

// New creates a Fetcher bounded to maxConcurrent simultaneous git
// subprocesses. maxConcurrent <= 0 uses the default of 10.
func New(repoRoot string, maxConcurrent int) *Fetcher {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Fetcher{repoRoot: repoRoot, gate: semaphore.NewWeighted(int64(maxConcurrent))}
}

// IsGitRepo reports whether repoRoot is inside a git working tree.
func (f *Fetcher) IsGitRepo(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, repoCheckTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = f.repoRoot
	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// FetchOne gets author/last_modified for one file, relative to
// repoRoot. A subprocess failure or timeout yields a zero-value Info,
// never an error.
func (f *Fetcher) FetchOne(ctx context.Context, relPath string) Info {
	ctx, cancel := context.WithTimeout(ctx, fileLookupTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "log", "-1", "--format=%an|%ai", "--", relPath)
	cmd.Dir = f.repoRoot
	out, err := cmd.Output()
	if err != nil {
		return Info{}
	}

	line := strings.TrimSpace(string(out))
	if line == "" {
		return Info{}
	}
	parts := strings.SplitN(line, "|", 2)
	if len(parts) != 2 {
		return Info{}
	}
	return Info{Author: strings.TrimSpace(parts[0]), LastModified: strings.TrimSpace(parts[1])}
}

// FetchBatch gets metadata for every distinct path in relPaths,
// bounded by the Fetcher's semaphore. If repoRoot is not a git
// repository, every entry is returned zero-valued and no per-file git
// lookup is run.
func (f *Fetcher) FetchBatch(ctx context.Context, relPaths []string) map[string]Info {
	results := make(map[string]Info, len(relPaths))
	if !f.IsGitRepo(ctx) {
		for _, p := range relPaths {
			results[p] = Info{}
		}
		return results
	}

	seen := make(map[string]bool, len(relPaths))
	var unique []string
	for _, p := range relPaths {
		if !seen[p] {
			seen[p] = true
			unique = append(unique, p)
		}
	}

	type result struct {
		path string
		info Info
	}
	out := make(chan result, len(unique))

	for _, p := range unique {
		p := p
		if err := f.gate.Acquire(ctx, 1); err != nil {
			out <- result{path: p, info: Info{}}
			continue
		}
		go func() {
			defer f.gate.Release(1)
			out <- result{path: p, info: f.FetchOne(ctx, p)}
		}()
	}

	for range unique {
		r := <-out
		results[r.path] = r.info
	}
	return results
}

// ActiveBranch returns the current branch name, or "" if unavailable.
func (f *Fetcher) ActiveBranch(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, repoCheckTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = f.repoRoot
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
