package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilePriorityOrdering(t *testing.T) {
	assert.Less(t, FilePriority("src/auth.py"), FilePriority("docs/auth.md"))
	assert.Less(t, FilePriority("src/auth.py"), FilePriority("tests/test_auth.py"))
	assert.Less(t, FilePriority("tests/test_auth.py"), FilePriority("docs/auth.md"))
	assert.Less(t, FilePriority("lib/widget.dart"), FilePriority("other/widget.dart"))
}

func TestFilePriorityDocsAlwaysLast(t *testing.T) {
	assert.Equal(t, priorityDocs, FilePriority("README.md"))
	assert.Equal(t, priorityDocs, FilePriority("docs/guide.mdx"))
}

func TestFilePrioritySourceDirsMatchNested(t *testing.T) {
	assert.Equal(t, prioritySource, FilePriority("backend/src/server.go"))
	assert.Equal(t, prioritySource, FilePriority("src/server.go"))
}
