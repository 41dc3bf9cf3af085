package program

import "testing"

func TestStrategyTreesAreValid(t *testing.T) {
	for _, name := range StrategyNames() {
		tree, err := Strategy(name)
		if err != nil {
			t.Fatalf("strategy %s: %v", name, err)
		}
		if err := tree.Validate(); err != nil {
			t.Fatalf("strategy %s invalid: %v", name, err)
		}
	}
}

func TestStrategyShapes(t *testing.T) {
	basic, err := Strategy(StrategyBasic)
	if err != nil {
		t.Fatalf("basic: %v", err)
	}
	if got := basic.Canonical(); got != "sequence(compact,move_to_morning)" {
		t.Fatalf("basic canonical = %s", got)
	}

	compactTree, err := Strategy(StrategyCompact)
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if got := compactTree.Canonical(); got != "sequence(compact,distribute_load,optimize_blocks)" {
		t.Fatalf("compact canonical = %s", got)
	}
}

func TestStrategyUnknownName(t *testing.T) {
	if _, err := Strategy("aggressive"); err == nil {
		t.Fatal("unknown strategy accepted")
	}
}

func TestStrategyReturnsFreshTrees(t *testing.T) {
	first, _ := Strategy(StrategyBasic)
	second, _ := Strategy(StrategyBasic)
	first.Children[0] = New(KindNoOp)
	if second.Canonical() != "sequence(compact,move_to_morning)" {
		t.Fatal("strategy trees share storage")
	}
}
