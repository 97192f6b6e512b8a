// Package languages registers each tree-sitter-backed language's chunk
// and usage queries with a chunker.Registry.
package languages

import "codekg/internal/chunker"

// RegisterAll wires every tree-sitter-backed language into r. Languages
// without a tree-sitter grammar in this build (sql, dart, firestore,
// markdown) are handled separately by their own regex/brace-matching
// chunkers, not through this registry.
func RegisterAll(r *chunker.Registry) {
	RegisterPython(r)
	RegisterJavaScript(r)
	RegisterTypeScript(r)
	RegisterGo(r)
	RegisterRust(r)
	RegisterJava(r)
	RegisterCPP(r)
}
