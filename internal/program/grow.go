package program

import "math/rand"

const (
	DefaultMaxDepth              = 6
	DefaultFunctionalProbability = 0.6
)

// GrowConfig bounds random tree growth. Zero values apply the defaults.
type GrowConfig struct {
	MaxDepth              int
	FunctionalProbability float64
}

func (c GrowConfig) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return DefaultMaxDepth
}

func (c GrowConfig) functionalProbability() float64 {
	if c.FunctionalProbability > 0 {
		return c.FunctionalProbability
	}
	return DefaultFunctionalProbability
}

// Grow builds a random tree from the root. The root is always functional, so
// every grown tree has at least one level of structure.
func Grow(rng *rand.Rand, cfg GrowConfig) *Node {
	return GrowAt(rng, cfg, 0)
}

// GrowAt builds a random subtree rooted at the given depth. At or beyond
// MaxDepth only terminals are produced; above it, a functional node is
// produced at depth zero or with FunctionalProbability, branch_on_idle and
// try_alternatives receiving exactly two children and sequence two to four.
func GrowAt(rng *rand.Rand, cfg GrowConfig, depth int) *Node {
	if depth >= cfg.maxDepth() {
		return &Node{Kind: randomTerminal(rng)}
	}
	if depth == 0 || rng.Float64() < cfg.functionalProbability() {
		kind := FunctionalKinds[rng.Intn(len(FunctionalKinds))]
		childCount := 2
		if kind == KindSequence {
			childCount = 2 + rng.Intn(3)
		}
		node := &Node{Kind: kind, Children: make([]*Node, 0, childCount)}
		for i := 0; i < childCount; i++ {
			node.Children = append(node.Children, GrowAt(rng, cfg, depth+1))
		}
		return node
	}
	return &Node{Kind: randomTerminal(rng)}
}

func randomTerminal(rng *rand.Rand) Kind {
	return TerminalKinds[rng.Intn(len(TerminalKinds))]
}
