package languages

import (
	"codekg/internal/chunker"

	"github.com/smacker/go-tree-sitter/cpp"
)

// RegisterCPP registers the C++ grammar: function definitions and
// class/struct specifiers become chunks; calls become usages.
func RegisterCPP(r *chunker.Registry) {
	r.Register("cpp", &chunker.LanguageSpec{
		Language: cpp.GetLanguage(),
		Query: `
			(function_definition declarator: (function_declarator declarator: (identifier) @name)) @chunk
			(class_specifier name: (type_identifier) @name) @chunk
			(struct_specifier name: (type_identifier) @name) @chunk
		`,
		UsageQuery: `
			(call_expression function: (identifier) @call)
			(call_expression function: (field_expression field: (field_identifier) @call))
		`,
		Extensions: []string{"cpp", "cc", "cxx", "hpp", "h"},
	})
}
