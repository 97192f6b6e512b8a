package chunker

import (
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codekg/internal/model"
)

var tagToKind = map[string]string{
	"call":        model.UsageCall,
	"decorator":   model.UsageDecorator,
	"instantiate": model.UsageInstantiation,
	"reference":   model.UsageReference,
}

// dependsCall matches Python's `Depends(name)` dependency-injection
// idiom: the argument identifier becomes a usage tagged with context
// "Depends", per spec 4.5.
var dependsCall = regexp.MustCompile(`\bDepends\(\s*([A-Za-z_][A-Za-z0-9_]*)`)

// extractUsages runs spec.UsageQuery over root and assigns each match to
// the chunk whose line range contains it, by nearest enclosing start
// line (chunks are non-overlapping post-dedup).
func extractUsages(spec *LanguageSpec, lang string, root *sitter.Node, src []byte, chunks []model.Chunk) ([]model.Usage, error) {
	var usages []model.Usage

	if spec.UsageQuery != "" {
		captures, err := runQuery(spec.Language, spec.UsageQuery, root, src)
		if err != nil {
			return nil, err
		}
		for _, cap := range captures {
			kind, ok := tagToKind[cap.tag]
			if !ok || cap.name == "" {
				continue
			}
			name := cap.name
			if kind == model.UsageDecorator {
				name = lastDotComponent(strings.TrimPrefix(name, "@"))
			}
			containing := findContainingChunk(chunks, cap.startLine)
			if containing == "" {
				continue
			}
			usages = append(usages, model.Usage{
				ContainingChunkID: containing,
				ReferencedName:    name,
				Kind:              kind,
			})
		}
	}

	if lang == "python" {
		for _, c := range chunks {
			for _, m := range dependsCall.FindAllStringSubmatch(c.Content, -1) {
				usages = append(usages, model.Usage{
					ContainingChunkID: c.ID,
					ReferencedName:    m[1],
					Kind:              model.UsageReference,
					Context:           "Depends",
				})
			}
		}
	}

	return usages, nil
}

func lastDotComponent(s string) string {
	parts := strings.Split(s, ".")
	return parts[len(parts)-1]
}

// findContainingChunk returns the id of the chunk whose [StartLine,
// EndLine] contains line, preferring the innermost (latest-starting)
// match.
func findContainingChunk(chunks []model.Chunk, line int) string {
	best := -1
	var bestID string
	sorted := make([]model.Chunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartLine < sorted[j].StartLine })

	for _, c := range sorted {
		if line >= c.StartLine && line <= c.EndLine && c.StartLine > best {
			best = c.StartLine
			bestID = c.ID
		}
	}
	return bestID
}
