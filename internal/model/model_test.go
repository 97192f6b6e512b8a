package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkIDStable(t *testing.T) {
	id1 := ChunkID("a.py", "foo", 1)
	id2 := ChunkID("a.py", "foo", 1)
	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 32)
}

func TestChunkIDDiffersOnAnyComponent(t *testing.T) {
	base := ChunkID("a.py", "foo", 1)
	assert.NotEqual(t, base, ChunkID("b.py", "foo", 1))
	assert.NotEqual(t, base, ChunkID("a.py", "bar", 1))
	assert.NotEqual(t, base, ChunkID("a.py", "foo", 2))
}

func TestProjectIDStablePerRoot(t *testing.T) {
	p := Project{}
	id1 := p.ID("/proj/a")
	id2 := p.ID("/proj/a")
	id3 := p.ID("/proj/b")
	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
	assert.Len(t, id1, 32)
}
