package extract

import (
	"testing"

	"puzzleETL/internal/model"
)

const (
	target = "3PTargetPoolAddressXXXXXXXXXXXXXXXX"
	trader = "3PTraderAddressXXXXXXXXXXXXXXXXXXXX"
)

func invocation(id, sender, dApp, function string) model.RawTransaction {
	return model.RawTransaction{
		Type:              model.TxInvocation,
		ID:                id,
		Height:            100,
		Timestamp:         1700000000000,
		Sender:            sender,
		ApplicationStatus: model.StatusSucceeded,
		DApp:              dApp,
		Call:              &model.Call{Function: function},
	}
}

func TestFindRelevantFailedTransaction(t *testing.T) {
	tx := invocation("tx1", trader, target, "swap")
	tx.ApplicationStatus = "script_execution_failed"

	if got := FindRelevantTransactions(tx, target, nil, nil); got != nil {
		t.Fatalf("failed transaction must yield nothing, got %d", len(got))
	}
}

func TestFindRelevantTopLevelMatch(t *testing.T) {
	tx := invocation("tx1", trader, target, "swap")

	got := FindRelevantTransactions(tx, target, nil, nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 relevant node, got %d", len(got))
	}
	if got[0].Sender != trader || got[0].DApp != target {
		t.Fatalf("unexpected node: %+v", got[0])
	}
}

func TestFindRelevantNestedPreOrder(t *testing.T) {
	// tx -> other dApp
	//   child1 -> target
	//     grandchild -> target
	//   child2 -> target
	grandchild := invocation("", "", target, "internalSwap")
	child1 := invocation("", "", target, "exchange")
	child1.StateChanges = &model.StateChanges{Invokes: []model.RawTransaction{grandchild}}
	child2 := invocation("", "", target, "payout")

	tx := invocation("tx1", trader, "3POtherDApp", "route")
	tx.StateChanges = &model.StateChanges{Invokes: []model.RawTransaction{child1, child2}}

	got := FindRelevantTransactions(tx, target, nil, nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 relevant nodes, got %d", len(got))
	}

	// Pre-order: child1, its grandchild, then child2.
	if got[0].Function() != "exchange" || got[1].Function() != "internalSwap" || got[2].Function() != "payout" {
		t.Fatalf("wrong order: %s, %s, %s", got[0].Function(), got[1].Function(), got[2].Function())
	}

	// Nested nodes inherit sender from the parent's dApp and identity
	// from the top-level transaction.
	if got[0].Sender != "3POtherDApp" {
		t.Fatalf("child sender: got %q", got[0].Sender)
	}
	if got[1].Sender != target {
		t.Fatalf("grandchild sender: got %q", got[1].Sender)
	}
	for i, node := range got {
		if node.ID != "tx1" || node.Height != 100 || node.Timestamp != 1700000000000 {
			t.Fatalf("node %d did not inherit top-level identity: %+v", i, node)
		}
		if node.Type != model.TxInvocation {
			t.Fatalf("node %d type: got %d", i, node.Type)
		}
	}
}

func TestFindRelevantWrappedInvocation(t *testing.T) {
	tx := model.RawTransaction{
		Type:              model.TxWrapped,
		ID:                "tx1",
		Height:            100,
		Timestamp:         1700000000000,
		Sender:            trader,
		ApplicationStatus: model.StatusSucceeded,
		Payload: &model.WrappedPayload{
			Type: "invocation",
			DApp: target,
			Call: &model.Call{Function: "swap"},
		},
	}

	got := FindRelevantTransactions(tx, target, nil, nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 relevant node, got %d", len(got))
	}
	if got[0].ID != "tx1" || got[0].Sender != trader {
		t.Fatalf("wrapper identity not inherited: %+v", got[0])
	}
}

func TestFindRelevantWrappedTransfer(t *testing.T) {
	tx := model.RawTransaction{
		Type:              model.TxWrapped,
		ID:                "tx1",
		Sender:            trader,
		ApplicationStatus: model.StatusSucceeded,
		Payload:           &model.WrappedPayload{Type: "transfer", DApp: target},
	}

	if got := FindRelevantTransactions(tx, target, nil, nil); got != nil {
		t.Fatalf("wrapped transfer must yield nothing, got %d", len(got))
	}
}

func TestFindRelevantVIPFunction(t *testing.T) {
	tx := invocation("tx1", trader, "3PUnrelatedDApp", "swap")

	if got := FindRelevantTransactions(tx, target, nil, nil); got != nil {
		t.Fatalf("non-target non-vip node must yield nothing, got %d", len(got))
	}

	got := FindRelevantTransactions(tx, target, []string{"swap"}, nil)
	if len(got) != 1 {
		t.Fatalf("vip function match: expected 1 node, got %d", len(got))
	}
}

func TestFindRelevantMalformedNodeSkipsSubtree(t *testing.T) {
	// The malformed child carries a valid grandchild; skipping the child
	// abandons its whole subtree.
	grandchild := invocation("", "", target, "swap")
	malformed := model.RawTransaction{
		StateChanges: &model.StateChanges{Invokes: []model.RawTransaction{grandchild}},
	}
	sibling := invocation("", "", target, "exchange")

	tx := invocation("tx1", trader, target, "route")
	tx.StateChanges = &model.StateChanges{Invokes: []model.RawTransaction{malformed, sibling}}

	got := FindRelevantTransactions(tx, target, nil, nil)
	if len(got) != 2 {
		t.Fatalf("expected root and sibling only, got %d", len(got))
	}
	if got[0].Function() != "route" || got[1].Function() != "exchange" {
		t.Fatalf("wrong nodes survived: %s, %s", got[0].Function(), got[1].Function())
	}
}
