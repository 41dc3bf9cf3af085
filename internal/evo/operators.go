// Package evo runs the generational loop over program trees: seeded random
// populations, tournament selection, subtree crossover, regrow mutation,
// elitism, and per-generation diagnostics.
package evo

import (
	"math/rand"

	"horarium/internal/program"
)

// subtreeStopProbability is the chance of stopping the descent at a
// child-bearing node instead of walking deeper, biasing picks toward leaves
// without excluding inner subtrees.
const subtreeStopProbability = 0.1

// mutationGrowDepth is the depth the regrow mutation starts from, keeping
// replacement subtrees shallow.
const mutationGrowDepth = 2

// pickSubtree walks down from the root taking a uniformly random child at
// each step, stopping at a leaf or on an early-stop roll. It returns the
// chosen child's parent and slot; the root itself is never picked, so a
// leaf-only tree yields no pick.
func pickSubtree(rng *rand.Rand, root *program.Node) (*program.Node, int) {
	if root == nil || len(root.Children) == 0 {
		return nil, -1
	}
	cur := root
	for {
		idx := rng.Intn(len(cur.Children))
		child := cur.Children[idx]
		if len(child.Children) == 0 || rng.Float64() < subtreeStopProbability {
			return cur, idx
		}
		cur = child
	}
}

// Crossover clones the first parent and grafts a cloned random subtree of the
// second parent onto a random slot of the clone. If either tree offers no
// pickable subtree the clone is returned unmodified.
func Crossover(rng *rand.Rand, first, second *program.Node) *program.Node {
	child := first.Clone()
	targetParent, targetSlot := pickSubtree(rng, child)
	if targetParent == nil {
		return child
	}
	sourceParent, sourceSlot := pickSubtree(rng, second)
	if sourceParent == nil {
		return child
	}
	targetParent.Children[targetSlot] = sourceParent.Children[sourceSlot].Clone()
	return child
}

// Mutate clones the tree and regrows one random subtree from
// mutationGrowDepth. Trees with no pickable subtree come back unchanged.
func Mutate(rng *rand.Rand, tree *program.Node, cfg program.GrowConfig) *program.Node {
	child := tree.Clone()
	parent, slot := pickSubtree(rng, child)
	if parent == nil {
		return child
	}
	parent.Children[slot] = program.GrowAt(rng, cfg, mutationGrowDepth)
	return child
}
