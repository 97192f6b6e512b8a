package chunker

import "regexp"

// Dependency patterns per language, grounded in spec's per-language
// import-string forms (4.5 "Dependencies"). Each non-empty submatch is
// an import specifier; the Python pattern has one group per import form
// ("from X import" and "import X").
var (
	pythonImport     = regexp.MustCompile(`(?m)^\s*(?:from\s+([\w.]+)\s+import|import\s+([\w.]+))`)
	jsImport         = regexp.MustCompile(`(?m)(?:import\s.*?from\s+|require\()\s*['"]([^'"]+)['"]`)
	dartImport       = regexp.MustCompile(`(?m)import\s+'([^']+)'`)
	goImport         = regexp.MustCompile(`(?m)^\s*(?:import\s+)?"([^"]+)"`)
	rustImport       = regexp.MustCompile(`(?m)^\s*use\s+([\w:{}, ]+);`)
	javaImport       = regexp.MustCompile(`(?m)^\s*import\s+(?:static\s+)?([\w.]+)(?:\.\*)?;`)
	cppImport        = regexp.MustCompile(`(?m)^\s*#include\s*[<"]([^>"]+)[>"]`)
)

// ExtractDependencies returns the set of import specifiers declared in
// src for the given language, in first-seen order.
func ExtractDependencies(lang string, src []byte) []string {
	var pattern *regexp.Regexp
	switch lang {
	case "python":
		pattern = pythonImport
	case "javascript", "typescript":
		pattern = jsImport
	case "dart":
		pattern = dartImport
	case "go":
		pattern = goImport
	case "rust":
		pattern = rustImport
	case "java":
		pattern = javaImport
	case "cpp":
		pattern = cppImport
	default:
		return nil
	}

	seen := map[string]bool{}
	var deps []string
	for _, m := range pattern.FindAllSubmatch(src, -1) {
		for _, g := range m[1:] {
			if len(g) == 0 {
				continue
			}
			dep := string(g)
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	return deps
}
