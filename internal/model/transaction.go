package model

import "encoding/json"

// TxType is the Waves transaction type discriminant.
type TxType int

const (
	// TxTransfer is a plain asset transfer.
	TxTransfer TxType = 4
	// TxInvocation is an InvokeScript transaction.
	TxInvocation TxType = 16
	// TxWrapped is an Ethereum-style wrapped transaction carrying an
	// inner payload that is itself an invocation or a transfer.
	TxWrapped TxType = 18
)

// StatusSucceeded is the applicationStatus of an applied transaction.
const StatusSucceeded = "succeeded"

// Payment is a caller deposit attached to an invocation.
type Payment struct {
	AssetID *string `json:"assetId"`
	Amount  int64   `json:"amount"`
}

// Transfer is a contract-initiated payout recorded in state changes.
type Transfer struct {
	Address string  `json:"address"`
	Asset   *string `json:"asset"`
	Amount  int64   `json:"amount"`
}

// DataEntry is a contract storage write recorded in state changes.
type DataEntry struct {
	Key   string          `json:"key"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Call describes the invoked function of an InvokeScript transaction.
type Call struct {
	Function string            `json:"function"`
	Args     []json.RawMessage `json:"args,omitempty"`
}

// StateChanges holds the contract-side effects of an invocation. The
// invokes list nests recursively: each entry has the same shape as an
// invocation transaction, and its dApp is the sender context for its
// own children.
type StateChanges struct {
	Data      []DataEntry      `json:"data,omitempty"`
	Transfers []Transfer       `json:"transfers,omitempty"`
	Invokes   []RawTransaction `json:"invokes,omitempty"`
}

// WrappedPayload is the inner transaction of a type 18 wrapper. Its
// sub-kind is a string rather than a numeric type.
type WrappedPayload struct {
	Type         string        `json:"type"`
	DApp         string        `json:"dApp"`
	Call         *Call         `json:"call"`
	Payment      []Payment     `json:"payment,omitempty"`
	StateChanges *StateChanges `json:"stateChanges,omitempty"`
}

// RawTransaction is a node-shaped transaction record. The same struct
// represents top-level transactions and nested invocation nodes; which
// fields are meaningful depends on Type.
type RawTransaction struct {
	Type              TxType          `json:"type"`
	ID                string          `json:"id"`
	Height            int64           `json:"height"`
	Timestamp         int64           `json:"timestamp"`
	Sender            string          `json:"sender"`
	Fee               int64           `json:"fee,omitempty"`
	ApplicationStatus string          `json:"applicationStatus"`
	DApp              string          `json:"dApp,omitempty"`
	Call              *Call           `json:"call,omitempty"`
	Payment           []Payment       `json:"payment,omitempty"`
	StateChanges      *StateChanges   `json:"stateChanges,omitempty"`
	Payload           *WrappedPayload `json:"payload,omitempty"`
}

// Succeeded reports whether the transaction was applied.
func (t *RawTransaction) Succeeded() bool {
	return t.ApplicationStatus == StatusSucceeded
}

// Function returns the invoked function name, or "" for non-invocations.
func (t *RawTransaction) Function() string {
	if t.Call == nil {
		return ""
	}
	return t.Call.Function
}

// Unwrap normalizes a wrapped transaction into its inner payload. The
// inner record inherits id, timestamp, height, sender, and application
// status from the wrapper; an "invocation" sub-kind becomes
// TxInvocation, anything else becomes TxTransfer. Non-wrapped
// transactions are returned unchanged.
func (t RawTransaction) Unwrap() RawTransaction {
	if t.Type != TxWrapped || t.Payload == nil {
		return t
	}

	inner := RawTransaction{
		Type:              TxTransfer,
		ID:                t.ID,
		Height:            t.Height,
		Timestamp:         t.Timestamp,
		Sender:            t.Sender,
		ApplicationStatus: t.ApplicationStatus,
		DApp:              t.Payload.DApp,
		Call:              t.Payload.Call,
		Payment:           t.Payload.Payment,
		StateChanges:      t.Payload.StateChanges,
	}
	if t.Payload.Type == "invocation" {
		inner.Type = TxInvocation
	}
	return inner
}
