package languages

import (
	"codekg/internal/chunker"

	"github.com/smacker/go-tree-sitter/python"
)

// RegisterPython registers the Python grammar and its chunk/usage
// queries: functions and classes (bare or decorated) become chunks;
// module-level assignments become variable chunks; calls, decorators,
// and Depends(...) injection targets become usages.
func RegisterPython(r *chunker.Registry) {
	r.Register("python", &chunker.LanguageSpec{
		Language: python.GetLanguage(),
		Query: `
			(function_definition name: (identifier) @name) @chunk
			(class_definition name: (identifier) @name) @chunk
			(decorated_definition definition: (function_definition name: (identifier) @name)) @chunk
			(decorated_definition definition: (class_definition name: (identifier) @name)) @chunk
			(module (expression_statement (assignment left: (identifier) @name) @chunk))
		`,
		UsageQuery: `
			(call function: (identifier) @call)
			(call function: (attribute attribute: (identifier) @call))
			(decorator (identifier) @decorator)
			(decorator (attribute attribute: (identifier) @decorator))
			(decorator (call function: (identifier) @decorator))
		`,
		Extensions: []string{"py", "pyi"},
	})
}
