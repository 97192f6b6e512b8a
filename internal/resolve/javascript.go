package resolve

import (
	"encoding/json"
	"os"
	"path"
	"regexp"
	"strings"
)

var jsExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".d.ts"}

var (
	jsLineComment  = regexp.MustCompile(`(?m)//.*$`)
	jsBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// JSResolver resolves JavaScript/TypeScript import specifiers: relative
// paths with extension guessing and directory-index fallback, plus
// tsconfig.json/jsconfig.json path aliases.
type JSResolver struct{}

type tsconfigOptions struct {
	CompilerOptions struct {
		Paths   map[string][]string `json:"paths"`
		BaseURL string               `json:"baseUrl"`
	} `json:"compilerOptions"`
}

func (r *JSResolver) Resolve(sourceFile, importString, projectRoot string) string {
	var resolved string
	if strings.HasPrefix(importString, ".") {
		resolved = resolveRelativeJS(sourceFile, importString)
	} else {
		resolved = resolveAlias(projectRoot, importString)
	}
	return guard(projectRoot, resolved)
}

func resolveRelativeJS(sourceFile, importString string) string {
	sourceDir := path.Dir(sourceFile)
	target := path.Join(sourceDir, importString)

	if fileExists(target) {
		return target
	}
	for _, ext := range jsExtensions {
		if p := target + ext; fileExists(p) {
			return p
		}
	}
	if dirExists(target) {
		for _, ext := range jsExtensions {
			if p := path.Join(target, "index"+ext); fileExists(p) {
				return p
			}
		}
	}
	return ""
}

func resolveAlias(projectRoot, importString string) string {
	paths, baseURL := loadTSConfig(projectRoot)
	if len(paths) == 0 {
		return ""
	}

	for aliasPattern, targets := range paths {
		if aliasPattern == importString {
			for _, target := range targets {
				if resolved := checkPathTarget(projectRoot, baseURL, target); resolved != "" {
					return resolved
				}
			}
			continue
		}

		if strings.HasSuffix(aliasPattern, "*") {
			prefix := strings.TrimSuffix(aliasPattern, "*")
			if strings.HasPrefix(importString, prefix) {
				suffix := strings.TrimPrefix(importString, prefix)
				for _, target := range targets {
					if strings.HasSuffix(target, "*") {
						targetBase := strings.TrimSuffix(target, "*")
						if resolved := checkPathTarget(projectRoot, baseURL, targetBase+suffix); resolved != "" {
							return resolved
						}
					}
				}
			}
		}
	}
	return ""
}

func checkPathTarget(projectRoot, baseURL, targetRelPath string) string {
	full := path.Join(projectRoot, baseURL, targetRelPath)

	if fileExists(full) {
		return full
	}
	for _, ext := range jsExtensions {
		if p := full + ext; fileExists(p) {
			return p
		}
	}
	if dirExists(full) {
		for _, ext := range jsExtensions {
			if p := path.Join(full, "index"+ext); fileExists(p) {
				return p
			}
		}
	}
	return ""
}

// tsconfigCache avoids re-reading/re-parsing tsconfig.json per import,
// keyed by project root.
var tsconfigCache = map[string]struct {
	paths   map[string][]string
	baseURL string
}{}

func loadTSConfig(projectRoot string) (map[string][]string, string) {
	if cached, ok := tsconfigCache[projectRoot]; ok {
		return cached.paths, cached.baseURL
	}

	paths, baseURL := readTSConfig(projectRoot)
	tsconfigCache[projectRoot] = struct {
		paths   map[string][]string
		baseURL string
	}{paths, baseURL}
	return paths, baseURL
}

func readTSConfig(projectRoot string) (map[string][]string, string) {
	for _, name := range []string{"tsconfig.json", "jsconfig.json"} {
		raw, err := os.ReadFile(path.Join(projectRoot, name))
		if err != nil {
			continue
		}
		stripped := jsBlockComment.ReplaceAll(raw, nil)
		stripped = jsLineComment.ReplaceAll(stripped, nil)

		var cfg tsconfigOptions
		if err := json.Unmarshal(stripped, &cfg); err != nil {
			continue
		}
		baseURL := cfg.CompilerOptions.BaseURL
		if baseURL == "" {
			baseURL = "."
		}
		return cfg.CompilerOptions.Paths, baseURL
	}
	return nil, "."
}
