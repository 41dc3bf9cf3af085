// Package program implements the tree programs evolved by the optimizer:
// node kinds, execution against timetable grids, random growth, validation,
// and shape signatures.
package program

import (
	"errors"
	"fmt"

	"horarium/internal/model"
)

// Kind tags a node variant. Functional kinds carry children; terminal kinds
// transform a grid directly.
type Kind string

const (
	KindBranchOnIdle    Kind = "branch_on_idle"
	KindSequence        Kind = "sequence"
	KindTryAlternatives Kind = "try_alternatives"

	KindCompact          Kind = "compact"
	KindMoveToMorning    Kind = "move_to_morning"
	KindSmartSwap        Kind = "smart_swap"
	KindResolveConflicts Kind = "resolve_conflicts"
	KindDistributeLoad   Kind = "distribute_load"
	KindOptimizeBlocks   Kind = "optimize_blocks"
	KindNoOp             Kind = "no_op"
)

// FunctionalKinds and TerminalKinds are the growth candidate pools, in
// canonical order.
var (
	FunctionalKinds = []Kind{KindBranchOnIdle, KindSequence, KindTryAlternatives}
	TerminalKinds   = []Kind{
		KindCompact, KindMoveToMorning, KindSmartSwap, KindResolveConflicts,
		KindDistributeLoad, KindOptimizeBlocks, KindNoOp,
	}
)

var (
	ErrUnknownNodeKind = errors.New("unknown node kind")
	ErrMalformedTree   = errors.New("malformed program tree")
)

// IsFunctional reports whether the kind carries children.
func (k Kind) IsFunctional() bool {
	switch k {
	case KindBranchOnIdle, KindSequence, KindTryAlternatives:
		return true
	}
	return false
}

// IsTerminal reports whether the kind is a leaf transform.
func (k Kind) IsTerminal() bool {
	switch k {
	case KindCompact, KindMoveToMorning, KindSmartSwap, KindResolveConflicts,
		KindDistributeLoad, KindOptimizeBlocks, KindNoOp:
		return true
	}
	return false
}

// Node is one node of a program tree. Children are owned: two trees never
// alias node storage, and all structural edits go through cloned trees.
type Node struct {
	Kind     Kind
	Children []*Node
}

// New builds a node over its children.
func New(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// Clone deep-copies the tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{Kind: n.Kind}
	if len(n.Children) > 0 {
		clone.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

// Validate checks arity over the whole tree: branch_on_idle and
// try_alternatives need exactly two children, sequence at least one, and
// terminals none. Unknown kinds are rejected.
func (n *Node) Validate() error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrMalformedTree)
	}
	switch {
	case n.Kind == KindBranchOnIdle || n.Kind == KindTryAlternatives:
		if len(n.Children) != 2 {
			return fmt.Errorf("%w: %s requires exactly 2 children, has %d", ErrMalformedTree, n.Kind, len(n.Children))
		}
	case n.Kind == KindSequence:
		if len(n.Children) == 0 {
			return fmt.Errorf("%w: sequence requires at least one child", ErrMalformedTree)
		}
	case n.Kind.IsTerminal():
		if len(n.Children) != 0 {
			return fmt.Errorf("%w: terminal %s has %d children", ErrMalformedTree, n.Kind, len(n.Children))
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownNodeKind, n.Kind)
	}
	for _, child := range n.Children {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the total number of nodes in the tree.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, child := range n.Children {
		total += child.Count()
	}
	return total
}

// Depth returns the tree depth; a single node has depth 1.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	deepest := 0
	for _, child := range n.Children {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Summary describes the tree shape for lineage and diversity diagnostics.
func (n *Node) Summary() model.ShapeSummary {
	summary := model.ShapeSummary{KindCounts: make(map[string]int)}
	n.summarize(&summary)
	summary.Depth = n.Depth()
	return summary
}

func (n *Node) summarize(summary *model.ShapeSummary) {
	if n == nil {
		return
	}
	summary.TotalNodes++
	summary.KindCounts[string(n.Kind)]++
	if n.Kind.IsFunctional() {
		summary.FunctionalCount++
	} else {
		summary.TerminalCount++
	}
	for _, child := range n.Children {
		child.summarize(summary)
	}
}
