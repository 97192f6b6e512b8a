package chunker

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// extractSignature returns name + parameter list as it appears in the
// first line(s) of content, whitespace-normalized to single spaces, for
// callable chunk kinds. Non-callables get an empty signature.
func extractSignature(content, name string, callable bool) string {
	if !callable || name == "" {
		return ""
	}
	idx := strings.Index(content, name+"(")
	if idx == -1 {
		idx = strings.Index(content, name+" (")
	}
	if idx == -1 {
		return ""
	}

	openParen := strings.IndexByte(content[idx:], '(')
	if openParen == -1 {
		return ""
	}
	openParen += idx

	depth := 0
	end := -1
	for i := openParen; i < len(content); i++ {
		switch content[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end != -1 {
			break
		}
	}
	if end == -1 {
		return ""
	}

	raw := content[idx : end+1]
	normalized := whitespaceRun.ReplaceAllString(raw, " ")
	return strings.TrimSpace(normalized)
}

var callableKinds = map[string]bool{
	"function": true, "method": true,
}
