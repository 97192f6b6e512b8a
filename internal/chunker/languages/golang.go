package languages

import (
	"codekg/internal/chunker"

	"github.com/smacker/go-tree-sitter/golang"
)

// RegisterGo registers the Go grammar: function/method/type declarations
// become chunks; calls and selector calls become usages.
func RegisterGo(r *chunker.Registry) {
	r.Register("go", &chunker.LanguageSpec{
		Language: golang.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @chunk
			(method_declaration name: (field_identifier) @name) @chunk
			(type_declaration (type_spec name: (type_identifier) @name)) @chunk
		`,
		UsageQuery: `
			(call_expression function: (identifier) @call)
			(call_expression function: (selector_expression field: (field_identifier) @call))
		`,
		Extensions: []string{"go"},
	})
}
