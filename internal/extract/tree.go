package extract

import (
	"go.uber.org/zap"

	"puzzleETL/internal/model"
)

// frame is a pending traversal node together with the sender context
// inherited from its parent invocation.
type frame struct {
	node   model.RawTransaction
	sender string
}

// FindRelevantTransactions walks one transaction's invocation tree and
// returns every node relevant to the target address or the VIP
// function list, flattened in pre-order with sibling order preserved.
//
// Failed transactions yield nothing: their state changes carry no
// economic meaning. Wrapped transactions are unwrapped first. Nested
// nodes inherit sender from the parent's dApp and id, height, and
// timestamp from the top-level transaction. Malformed nodes are logged
// and skipped without aborting the rest of the tree.
func FindRelevantTransactions(tx model.RawTransaction, targetAddress string, vipFunctions []string, logger *zap.Logger) []model.RawTransaction {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !tx.Succeeded() {
		return nil
	}

	tx = tx.Unwrap()
	if tx.Type != model.TxInvocation {
		return nil
	}

	vip := make(map[string]struct{}, len(vipFunctions))
	for _, fn := range vipFunctions {
		vip[fn] = struct{}{}
	}

	var relevant []model.RawTransaction

	// Explicit stack instead of recursion: nesting depth is unbounded
	// in principle, and a work-list keeps the pre-order trivially
	// inspectable. Children are pushed in reverse so siblings pop in
	// source order.
	stack := []frame{{node: tx, sender: tx.Sender}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := top.node
		node.Sender = top.sender
		node.Height = tx.Height
		node.Timestamp = tx.Timestamp
		node.ID = tx.ID
		node.Type = model.TxInvocation

		if node.DApp == "" || node.Function() == "" {
			logger.Warn("malformed invoke node skipped",
				zap.String("transaction_id", tx.ID),
				zap.String("dapp", node.DApp),
			)
			continue
		}

		if node.DApp == targetAddress || contains(vip, node.Function()) {
			relevant = append(relevant, node)
		}

		if node.StateChanges == nil {
			continue
		}
		invokes := node.StateChanges.Invokes
		for i := len(invokes) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: invokes[i], sender: node.DApp})
		}
	}

	return relevant
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
