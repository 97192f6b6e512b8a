package languages

import (
	"codekg/internal/chunker"

	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// RegisterTypeScript registers the TypeScript grammar, extending the
// JavaScript rule set with interfaces and type aliases.
func RegisterTypeScript(r *chunker.Registry) {
	r.Register("typescript", &chunker.LanguageSpec{
		Language: typescript.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @chunk
			(class_declaration name: (type_identifier) @name) @chunk
			(method_definition name: (property_identifier) @name) @chunk
			(export_statement (function_declaration name: (identifier) @name)) @chunk
			(export_statement (class_declaration name: (type_identifier) @name)) @chunk
			(program (lexical_declaration (variable_declarator name: (identifier) @name)) @chunk)
			(interface_declaration name: (type_identifier) @name) @chunk
			(type_alias_declaration name: (type_identifier) @name) @chunk
		`,
		UsageQuery: `
			(call_expression function: (identifier) @call)
			(call_expression function: (member_expression property: (property_identifier) @call))
			(jsx_opening_element name: (identifier) @instantiate)
			(decorator (identifier) @decorator)
			(decorator (call_expression function: (identifier) @decorator))
		`,
		Extensions: []string{"ts", "tsx"},
	})
}
