package resolve

import (
	"os"
	"path"
	"strings"
)

// PythonResolver resolves "from .a.b import c" / "import x.y" style
// import strings to files, grounded on the dot-count ascend-then-descend
// algorithm of the original resolver.
type PythonResolver struct{}

func (r *PythonResolver) Resolve(sourceFile, importString, projectRoot string) string {
	var resolved string
	if strings.HasPrefix(importString, ".") {
		resolved = r.resolveRelative(sourceFile, importString)
	} else {
		resolved = r.resolveAbsolute(projectRoot, importString)
	}
	return guard(projectRoot, resolved)
}

func (r *PythonResolver) resolveRelative(sourceFile, importString string) string {
	level := 0
	for _, c := range importString {
		if c == '.' {
			level++
		} else {
			break
		}
	}
	moduleName := importString[level:]

	baseDir := path.Dir(sourceFile)
	for i := 0; i < level-1; i++ {
		parent := path.Dir(baseDir)
		if parent == baseDir {
			return ""
		}
		baseDir = parent
	}

	if moduleName == "" {
		target := path.Join(baseDir, "__init__.py")
		if fileExists(target) {
			return target
		}
		return ""
	}

	return walkPythonParts(baseDir, strings.Split(moduleName, "."))
}

func (r *PythonResolver) resolveAbsolute(projectRoot, importString string) string {
	return walkPythonParts(projectRoot, strings.Split(importString, "."))
}

// walkPythonParts descends through package directories for all but the
// last component, then tries "<part>.py" and "<part>/__init__.py" for
// the last one.
func walkPythonParts(base string, parts []string) string {
	current := base
	for i, part := range parts {
		isLast := i == len(parts)-1
		pkgPath := path.Join(current, part)
		modPath := path.Join(current, part+".py")

		if isLast {
			if fileExists(modPath) {
				return modPath
			}
			initPath := path.Join(pkgPath, "__init__.py")
			if fileExists(initPath) {
				return initPath
			}
			return ""
		}

		if dirExists(pkgPath) {
			current = pkgPath
		} else {
			return ""
		}
	}
	return ""
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
