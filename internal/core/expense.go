package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	NoRecurrence Recurrence = ""
	Monthly      Recurrence = "monthly"
)

const maxNameLength = 200

type (
	Recurrence string

	// Installments marks an expense as entry Current of Total in a series.
	Installments struct {
		Current int `json:"current"`
		Total   int `json:"total"`
	}

	// Expense is one stored ledger entry. A non-blank Payer marks a
	// third-party expense, paid on someone else's behalf.
	Expense struct {
		ID           string        `json:"id"`
		Name         string        `json:"name"`
		Amount       Money         `json:"amount"`
		Category     Category      `json:"category"`
		DueDate      Date          `json:"dueDate"`
		Installments *Installments `json:"installments,omitempty"`
		Recurrence   Recurrence    `json:"recurrence,omitempty"`
		Payer        string        `json:"payer,omitempty"`
	}

	// NewExpense is the user input before installment expansion.
	NewExpense struct {
		Name              string     `json:"name"`
		Amount            Money      `json:"amount"`
		Category          Category   `json:"category"`
		DueDate           Date       `json:"dueDate"`
		InstallmentsTotal int        `json:"installments,omitempty"`
		Recurrence        Recurrence `json:"recurrence,omitempty"`
		Payer             string     `json:"payer,omitempty"`
	}

	// Ledger is the whole persisted state apart from target overrides.
	Ledger struct {
		Income   Money     `json:"income"`
		Expenses []Expense `json:"expenses"`
	}
)

var (
	ErrEmptyName           = errors.New("empty name")
	ErrNameTooLong         = fmt.Errorf("name too long (max %d characters)", maxNameLength)
	ErrInvalidInstallments = errors.New("invalid installments")
	ErrInvalidRecurrence   = errors.New("invalid recurrence")
	ErrNegativeIncome      = errors.New("income cannot be negative")
	ErrEmptyID             = errors.New("empty expense id")
	ErrExpenseNotFound     = errors.New("expense not found")
)

func (r Recurrence) Validate() error {
	switch r {
	case NoRecurrence, Monthly:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidRecurrence, string(r))
}

func (e Expense) IsThirdParty() bool  { return strings.TrimSpace(e.Payer) != "" }
func (e Expense) IsRecurring() bool   { return e.Recurrence != NoRecurrence }
// IsInstallment reports whether e is part of a series of two or more
// payments. A 1/1 marker is an ordinary expense.
func (e Expense) IsInstallment() bool {
	return e.Installments != nil && e.Installments.Total > 1
}

// Label is the display name; installment entries carry "(i/N)".
func (e Expense) Label() string {
	if !e.IsInstallment() {
		return e.Name
	}
	return fmt.Sprintf("%s (%d/%d)", e.Name, e.Installments.Current, e.Installments.Total)
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if err := validateFields(e.Name, e.Amount, e.Category, e.DueDate, e.Recurrence); err != nil {
		return err
	}
	if i := e.Installments; i != nil {
		if i.Total < 1 || i.Current < 1 || i.Current > i.Total {
			return fmt.Errorf("%w: %d/%d", ErrInvalidInstallments, i.Current, i.Total)
		}
	}
	return nil
}

// Validate checks user input. Third-party expenses are always filed under
// Uncategorized by Normalize, so the category is not checked for them.
func (n NewExpense) Validate() error {
	if n.InstallmentsTotal < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInstallments, n.InstallmentsTotal)
	}
	return validateFields(n.Name, n.Amount, n.Normalize().Category, n.DueDate, n.Recurrence)
}

// Normalize trims text fields and files third-party expenses as Uncategorized.
func (n NewExpense) Normalize() NewExpense {
	n.Name = strings.TrimSpace(n.Name)
	n.Payer = strings.TrimSpace(n.Payer)
	if n.Payer != "" {
		n.Category = Uncategorized
	}
	return n
}

func validateFields(name string, amount Money, cat Category, due Date, rec Recurrence) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	if !cat.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, string(cat))
	}
	if err := due.Validate(); err != nil {
		return err
	}
	return rec.Validate()
}

// Clone deep-copies the ledger so callers can mutate it freely.
func (l Ledger) Clone() Ledger {
	out := Ledger{Income: l.Income, Expenses: make([]Expense, len(l.Expenses))}
	for i, e := range l.Expenses {
		if e.Installments != nil {
			inst := *e.Installments
			e.Installments = &inst
		}
		out.Expenses[i] = e
	}
	return out
}

// Find returns the index of the expense with id, or -1.
func (l Ledger) Find(id string) int {
	for i, e := range l.Expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}
