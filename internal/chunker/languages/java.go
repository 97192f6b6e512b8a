package languages

import (
	"codekg/internal/chunker"

	"github.com/smacker/go-tree-sitter/java"
)

// RegisterJava registers the Java grammar: classes and interfaces
// become chunks; method invocations and object creation become usages.
// Method declarations are captured too, but dedupCaptures drops them in
// favour of the enclosing class or interface capture, so methods stay
// part of that chunk and are not chunks of their own.
func RegisterJava(r *chunker.Registry) {
	r.Register("java", &chunker.LanguageSpec{
		Language: java.GetLanguage(),
		Query: `
			(method_declaration name: (identifier) @name) @chunk
			(class_declaration name: (identifier) @name) @chunk
			(interface_declaration name: (identifier) @name) @chunk
		`,
		UsageQuery: `
			(method_invocation name: (identifier) @call)
			(object_creation_expression type: (type_identifier) @instantiate)
		`,
		Extensions: []string{"java"},
	})
}
