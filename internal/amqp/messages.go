package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChangeKind names the ledger mutation that produced a message.
type ChangeKind string

const (
	ChangeIncome        ChangeKind = "income"
	ChangeExpenseAdded  ChangeKind = "expense_added"
	ChangeExpenseEdited ChangeKind = "expense_updated"
	ChangeExpenseDelete ChangeKind = "expense_deleted"
	ChangeTargets       ChangeKind = "targets"
)

// LedgerChangeMessage tells the worker that the ledger changed. It carries
// only references; the worker reloads the ledger from the database.
type LedgerChangeMessage struct {
	ID         string     `json:"id"`
	Kind       ChangeKind `json:"kind"`
	Periods    []string   `json:"periods,omitempty"` // YYYY-MM months touched
	ExpenseIDs []string   `json:"expense_ids,omitempty"`
	// Recurring is set when a touched entry repeats monthly, so every later
	// month's schedule changed too.
	Recurring  bool       `json:"recurring,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

func NewLedgerChangeMessage(kind ChangeKind, periods, expenseIDs []string) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		ID:         uuid.NewString(),
		Kind:       kind,
		Periods:    periods,
		ExpenseIDs: expenseIDs,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
