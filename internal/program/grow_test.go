package program

import (
	"math/rand"
	"testing"
)

func TestGrowProducesValidBoundedTrees(t *testing.T) {
	cfg := GrowConfig{MaxDepth: 4}
	for seed := int64(0); seed < 100; seed++ {
		tree := Grow(rand.New(rand.NewSource(seed)), cfg)
		if err := tree.Validate(); err != nil {
			t.Fatalf("seed %d grew invalid tree: %v", seed, err)
		}
		if !tree.Kind.IsFunctional() {
			t.Fatalf("seed %d grew terminal root %s", seed, tree.Kind)
		}
		if depth := tree.Depth(); depth > cfg.MaxDepth+1 {
			t.Fatalf("seed %d grew depth %d beyond bound", seed, depth)
		}
	}
}

func TestGrowIsDeterministicUnderSeed(t *testing.T) {
	first := Grow(rand.New(rand.NewSource(42)), GrowConfig{})
	second := Grow(rand.New(rand.NewSource(42)), GrowConfig{})
	if first.Canonical() != second.Canonical() {
		t.Fatalf("same seed grew different trees:\n%s\n%s", first.Canonical(), second.Canonical())
	}

	other := Grow(rand.New(rand.NewSource(43)), GrowConfig{})
	if first.Canonical() == other.Canonical() {
		t.Fatal("different seeds grew identical trees")
	}
}

func TestGrowSequenceChildCounts(t *testing.T) {
	var check func(n *Node) bool
	check = func(n *Node) bool {
		if n.Kind == KindSequence && (len(n.Children) < 2 || len(n.Children) > 4) {
			return false
		}
		for _, child := range n.Children {
			if !check(child) {
				return false
			}
		}
		return true
	}

	for seed := int64(0); seed < 50; seed++ {
		tree := Grow(rand.New(rand.NewSource(seed)), GrowConfig{})
		if !check(tree) {
			t.Fatalf("seed %d grew sequence outside 2..4 children: %s", seed, tree.Canonical())
		}
	}
}

func TestGrowAtMaxDepthEmitsTerminal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		node := GrowAt(rng, GrowConfig{MaxDepth: 3}, 3)
		if !node.Kind.IsTerminal() {
			t.Fatalf("growth at max depth produced %s", node.Kind)
		}
	}
}
