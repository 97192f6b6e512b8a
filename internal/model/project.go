package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Project identifies an indexed repository root. Its ID is the stable
// handle used by the VectorStore (table name) and KnowledgeGraph (edge
// scope).
type Project struct {
	Root           string
	VectorDim      int
	EmbeddingModel string
}

// ID computes sha256(normalizedRoot)[:32], matching the chunk id scheme's
// truncation convention.
func (p Project) ID(normalizedRoot string) string {
	sum := sha256.Sum256([]byte(normalizedRoot))
	return hex.EncodeToString(sum[:])[:32]
}
