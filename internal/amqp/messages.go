package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"bilancio/internal/core"
)

const (
	KindTransaction = "transaction"
	KindGoal        = "goal"
)

// RecordSyncMessage asks the sync worker to mirror one ledger record to the
// remote backend. The full record is carried inline: the worker has no
// access to the owner's kv namespace.
type RecordSyncMessage struct {
	Kind      string          `json:"kind"`
	OwnerID   string          `json:"owner_id"`
	Record    json.RawMessage `json:"record"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewTransactionSyncMessage wraps a transaction for mirroring.
func NewTransactionSyncMessage(t core.Transaction) (*RecordSyncMessage, error) {
	record, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction: %w", err)
	}
	return &RecordSyncMessage{
		Kind:      KindTransaction,
		OwnerID:   t.OwnerID,
		Record:    record,
		Timestamp: time.Now(),
	}, nil
}

// NewGoalSyncMessage wraps a goal for mirroring.
func NewGoalSyncMessage(g core.Goal) (*RecordSyncMessage, error) {
	record, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal goal: %w", err)
	}
	return &RecordSyncMessage{
		Kind:      KindGoal,
		OwnerID:   g.OwnerID,
		Record:    record,
		Timestamp: time.Now(),
	}, nil
}

// Transaction decodes the carried record as a transaction.
func (m *RecordSyncMessage) Transaction() (core.Transaction, error) {
	if m.Kind != KindTransaction {
		return core.Transaction{}, fmt.Errorf("message kind is %q, not %q", m.Kind, KindTransaction)
	}
	var t core.Transaction
	if err := json.Unmarshal(m.Record, &t); err != nil {
		return core.Transaction{}, fmt.Errorf("unmarshal transaction record: %w", err)
	}
	return t, nil
}

// Goal decodes the carried record as a goal.
func (m *RecordSyncMessage) Goal() (core.Goal, error) {
	if m.Kind != KindGoal {
		return core.Goal{}, fmt.Errorf("message kind is %q, not %q", m.Kind, KindGoal)
	}
	var g core.Goal
	if err := json.Unmarshal(m.Record, &g); err != nil {
		return core.Goal{}, fmt.Errorf("unmarshal goal record: %w", err)
	}
	return g, nil
}

// ToJSON converts the message to JSON bytes
func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON creates a message from JSON bytes
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case KindTransaction, KindGoal:
	default:
		return nil, fmt.Errorf("unknown record kind %q", msg.Kind)
	}
	return &msg, nil
}
