package program

import "horarium/internal/model"

// ToRecord flattens the tree into its persisted form.
func (n *Node) ToRecord() model.ProgramRecord {
	rec := model.ProgramRecord{Kind: string(n.Kind)}
	for _, child := range n.Children {
		rec.Children = append(rec.Children, child.ToRecord())
	}
	return rec
}

// FromRecord rebuilds a tree from its persisted form and validates it, so
// malformed or unknown-kind records from external sources are rejected.
func FromRecord(rec model.ProgramRecord) (*Node, error) {
	node := fromRecord(rec)
	if err := node.Validate(); err != nil {
		return nil, err
	}
	return node, nil
}

func fromRecord(rec model.ProgramRecord) *Node {
	node := &Node{Kind: Kind(rec.Kind)}
	for _, child := range rec.Children {
		node.Children = append(node.Children, fromRecord(child))
	}
	return node
}
