package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdempotent(t *testing.T) {
	cases := []string{
		"/a/b/c",
		"a\\b\\c",
		"C:\\Users\\dev\\project",
		"/a//b/./c/",
		"",
		".",
	}
	for _, c := range cases {
		once := Normalize(c)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "Normalize(Normalize(%q)) should equal Normalize(%q)", c, c)
	}
}

func TestNormalizeLowersDriveLetter(t *testing.T) {
	assert.Equal(t, "c:/Users/dev", Normalize("C:\\Users\\dev"))
}

func TestNormalizeCollapsesDotSegments(t *testing.T) {
	assert.Equal(t, "/a/b/c", Normalize("/a/./b//c/"))
}

func TestContainsBoundary(t *testing.T) {
	assert.True(t, Contains("/proj", "/proj"))
	assert.True(t, Contains("/proj", "/proj/src/main.go"))
	assert.False(t, Contains("/proj", "/projects/other"))
	assert.False(t, Contains("/proj", "/etc/passwd"))
}

func TestHasTraversal(t *testing.T) {
	assert.True(t, HasTraversal("../../etc/passwd"))
	assert.True(t, HasTraversal("a/../../b"))
	assert.False(t, HasTraversal("a/b/c"))
}

func TestRel(t *testing.T) {
	assert.Equal(t, "src/main.go", Rel("/proj", "/proj/src/main.go"))
	assert.Equal(t, "", Rel("/proj", "/proj"))
}
