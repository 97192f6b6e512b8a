package languages

import (
	"codekg/internal/chunker"

	"github.com/smacker/go-tree-sitter/rust"
)

// RegisterRust registers the Rust grammar: functions, structs, enums,
// traits, and impl blocks become chunks; calls and macro invocations
// become usages.
func RegisterRust(r *chunker.Registry) {
	r.Register("rust", &chunker.LanguageSpec{
		Language: rust.GetLanguage(),
		Query: `
			(function_item name: (identifier) @name) @chunk
			(struct_item name: (type_identifier) @name) @chunk
			(enum_item name: (type_identifier) @name) @chunk
			(trait_item name: (type_identifier) @name) @chunk
			(impl_item type: (type_identifier) @name) @chunk
		`,
		UsageQuery: `
			(call_expression function: (identifier) @call)
			(call_expression function: (field_expression field: (field_identifier) @call))
			(macro_invocation macro: (identifier) @call)
		`,
		Extensions: []string{"rs"},
	})
}
