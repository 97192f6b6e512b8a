package chunker

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// complexitySpec drives the per-language branch-point count. statement
// types always count once per occurrence; operator types (boolean/binary
// expressions) count only when their operator token is one of "&&",
// "||", "and", or "or" — a plain "+" or "==" is not a branch point.
type complexitySpec struct {
	statementTypes map[string]bool
	operatorTypes  map[string]bool
}

var branchOperators = map[string]bool{"&&": true, "||": true, "and": true, "or": true}

// countComplexity computes 1 + the number of branch-point nodes in
// node's subtree, per spec's cyclomatic-count rule.
func countComplexity(node *sitter.Node, src []byte, spec complexitySpec) int {
	complexity := 1
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		t := n.Type()
		if spec.statementTypes[t] {
			complexity++
		} else if spec.operatorTypes[t] {
			if op := operatorToken(n, src); branchOperators[op] {
				complexity++
			}
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return complexity
}

// operatorToken returns the text of a binary/boolean expression's
// operator child, which tree-sitter grammars place as an unnamed child
// between the two operands.
func operatorToken(n *sitter.Node, src []byte) string {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if !c.IsNamed() {
			text := strings.TrimSpace(c.Content(src))
			if branchOperators[text] {
				return text
			}
		}
	}
	return ""
}

var pythonComplexity = complexitySpec{
	statementTypes: map[string]bool{
		"if_statement": true, "elif_clause": true, "for_statement": true,
		"while_statement": true, "except_clause": true, "conditional_expression": true,
		"match_statement": true, "case_clause": true,
	},
	operatorTypes: map[string]bool{"boolean_operator": true},
}

var jsComplexity = complexitySpec{
	statementTypes: map[string]bool{
		"if_statement": true, "for_statement": true, "for_in_statement": true,
		"while_statement": true, "do_statement": true, "switch_case": true,
		"catch_clause": true, "ternary_expression": true,
	},
	operatorTypes: map[string]bool{"binary_expression": true},
}

var goComplexity = complexitySpec{
	statementTypes: map[string]bool{
		"if_statement": true, "for_statement": true, "expression_case": true,
		"type_case": true, "communication_case": true,
	},
	operatorTypes: map[string]bool{"binary_expression": true},
}

var rustComplexity = complexitySpec{
	statementTypes: map[string]bool{
		"if_expression": true, "for_expression": true, "while_expression": true,
		"loop_expression": true, "match_arm": true,
	},
	operatorTypes: map[string]bool{"binary_expression": true},
}

var javaComplexity = complexitySpec{
	statementTypes: map[string]bool{
		"if_statement": true, "for_statement": true, "while_statement": true,
		"do_statement": true, "switch_label": true, "catch_clause": true,
		"ternary_expression": true,
	},
	operatorTypes: map[string]bool{"binary_expression": true},
}

var cppComplexity = complexitySpec{
	statementTypes: map[string]bool{
		"if_statement": true, "for_statement": true, "while_statement": true,
		"do_statement": true, "case_statement": true, "catch_clause": true,
		"conditional_expression": true,
	},
	operatorTypes: map[string]bool{"binary_expression": true},
}
