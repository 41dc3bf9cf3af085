package program

import (
	"errors"
	"testing"

	"horarium/internal/model"
)

func TestRecordRoundTrip(t *testing.T) {
	tree := New(KindSequence,
		New(KindCompact),
		New(KindTryAlternatives, New(KindResolveConflicts), New(KindNoOp)),
	)

	rebuilt, err := FromRecord(tree.ToRecord())
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	if rebuilt.Canonical() != tree.Canonical() {
		t.Fatalf("round trip changed tree: %s != %s", rebuilt.Canonical(), tree.Canonical())
	}
}

func TestFromRecordRejectsMalformed(t *testing.T) {
	badArity := model.ProgramRecord{Kind: "branch_on_idle", Children: []model.ProgramRecord{{Kind: "compact"}}}
	if _, err := FromRecord(badArity); !errors.Is(err, ErrMalformedTree) {
		t.Fatalf("bad arity err = %v, want ErrMalformedTree", err)
	}

	unknown := model.ProgramRecord{Kind: "quantum_shuffle"}
	if _, err := FromRecord(unknown); !errors.Is(err, ErrUnknownNodeKind) {
		t.Fatalf("unknown kind err = %v, want ErrUnknownNodeKind", err)
	}
}
