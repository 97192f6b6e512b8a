package resolve

import (
	"os"
	"path"
	"regexp"
	"strings"
)

var pubspecName = regexp.MustCompile(`(?m)^name:\s+([a-zA-Z0-9_]+)`)

// DartResolver resolves "package:name/path.dart" imports via the
// project's own pubspec.yaml name, and relative imports against the
// source file's directory.
type DartResolver struct{}

func (r *DartResolver) Resolve(sourceFile, importString, projectRoot string) string {
	if strings.HasPrefix(importString, "dart:") {
		return ""
	}

	var resolved string
	if strings.HasPrefix(importString, "package:") {
		resolved = resolvePackage(projectRoot, importString)
	} else {
		resolved = resolveRelativeDart(sourceFile, importString)
	}
	return guard(projectRoot, resolved)
}

func resolveRelativeDart(sourceFile, importString string) string {
	target := path.Join(path.Dir(sourceFile), importString)
	if fileExists(target) {
		return target
	}
	return ""
}

var pubspecNameCache = map[string]string{}

func resolvePackage(projectRoot, importString string) string {
	name, ok := pubspecNameCache[projectRoot]
	if !ok {
		name = readPubspecName(projectRoot)
		pubspecNameCache[projectRoot] = name
	}
	if name == "" {
		return ""
	}

	prefix := "package:" + name + "/"
	if !strings.HasPrefix(importString, prefix) {
		return ""
	}
	relPath := strings.TrimPrefix(importString, prefix)
	full := path.Join(projectRoot, "lib", relPath)
	if fileExists(full) {
		return full
	}
	return ""
}

func readPubspecName(projectRoot string) string {
	raw, err := os.ReadFile(path.Join(projectRoot, "pubspec.yaml"))
	if err != nil {
		return ""
	}
	m := pubspecName.FindStringSubmatch(string(raw))
	if m == nil {
		return ""
	}
	return m[1]
}
