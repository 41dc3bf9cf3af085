package program

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"horarium/internal/model"
)

// Signature identifies a tree shape for lineage records and diversity
// diagnostics.
type Signature struct {
	Fingerprint string             `json:"fingerprint"`
	Summary     model.ShapeSummary `json:"summary"`
}

// ComputeSignature fingerprints the canonical rendering and summarizes the
// tree shape.
func ComputeSignature(n *Node) Signature {
	return Signature{
		Fingerprint: n.Fingerprint(),
		Summary:     n.Summary(),
	}
}

// Canonical renders the tree as "kind(child,child,...)" with terminals as
// bare kinds. Two trees share a canonical form iff they are structurally
// identical.
func (n *Node) Canonical() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	if n == nil {
		return
	}
	b.WriteString(string(n.Kind))
	if len(n.Children) == 0 {
		return
	}
	b.WriteByte('(')
	for i, child := range n.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		child.render(b)
	}
	b.WriteByte(')')
}

// Fingerprint is the first eight bytes of the SHA-1 digest of the canonical
// rendering, hex encoded.
func (n *Node) Fingerprint() string {
	digest := sha1.Sum([]byte(n.Canonical()))
	return hex.EncodeToString(digest[:8])
}
