package program

import "fmt"

// Named baseline strategies. A strategy tree can seed the initial population
// of a run so evolution starts from a known-good shape.
const (
	StrategyBasic     = "basic"
	StrategyConflicts = "conflicts"
	StrategyCompact   = "compact"
)

// Strategy returns a fresh tree for the named baseline strategy.
func Strategy(name string) (*Node, error) {
	switch name {
	case StrategyBasic:
		return New(KindSequence, New(KindCompact), New(KindMoveToMorning)), nil
	case StrategyConflicts:
		return New(KindSequence, New(KindResolveConflicts), New(KindSmartSwap)), nil
	case StrategyCompact:
		return New(KindSequence, New(KindCompact), New(KindDistributeLoad), New(KindOptimizeBlocks)), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// StrategyNames lists the available baseline strategies.
func StrategyNames() []string {
	return []string{StrategyBasic, StrategyConflicts, StrategyCompact}
}
