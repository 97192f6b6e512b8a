package languages

import (
	"codekg/internal/chunker"

	"github.com/smacker/go-tree-sitter/javascript"
)

// RegisterJavaScript registers the JavaScript grammar: function/class
// declarations, methods, and top-level lexical declarations become
// chunks; calls, JSX tag instantiations, and decorators become usages.
// A method inside a class body is captured, but dedupCaptures drops it
// in favour of the enclosing class capture, so it stays part of the
// class chunk and is not a chunk of its own.
func RegisterJavaScript(r *chunker.Registry) {
	r.Register("javascript", &chunker.LanguageSpec{
		Language: javascript.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @chunk
			(class_declaration name: (identifier) @name) @chunk
			(method_definition name: (property_identifier) @name) @chunk
			(export_statement (function_declaration name: (identifier) @name)) @chunk
			(export_statement (class_declaration name: (identifier) @name)) @chunk
			(program (lexical_declaration (variable_declarator name: (identifier) @name)) @chunk)
		`,
		UsageQuery: `
			(call_expression function: (identifier) @call)
			(call_expression function: (member_expression property: (property_identifier) @call))
			(jsx_opening_element name: (identifier) @instantiate)
			(decorator (identifier) @decorator)
			(decorator (call_expression function: (identifier) @decorator))
		`,
		Extensions: []string{"js", "jsx", "mjs", "cjs"},
	})
}
