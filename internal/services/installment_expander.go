package services

import (
	"fmt"

	"github.com/google/uuid"

	"poupa/internal/core"
)

// InstallmentExpander turns a new expense into the stored entries it stands for.
type InstallmentExpander struct {
	newID func() string
}

func NewInstallmentExpander(newID func() string) *InstallmentExpander {
	if newID == nil {
		newID = uuid.NewString
	}
	return &InstallmentExpander{newID: newID}
}

// Expand returns one entry, or N entries one month apart for an
// installment purchase. Each installment carries the full stated amount.
func (x *InstallmentExpander) Expand(n core.NewExpense) []core.Expense {
	n = n.Normalize()
	base := core.Expense{
		ID:         x.newID(),
		Name:       n.Name,
		Amount:     n.Amount,
		Category:   n.Category,
		DueDate:    n.DueDate,
		Recurrence: n.Recurrence,
		Payer:      n.Payer,
	}
	if n.InstallmentsTotal <= 1 {
		return []core.Expense{base}
	}

	out := make([]core.Expense, 0, n.InstallmentsTotal)
	for i := 1; i <= n.InstallmentsTotal; i++ {
		e := base
		e.ID = fmt.Sprintf("%s-%d", base.ID, i-1)
		e.DueDate = n.DueDate.AddMonths(i - 1)
		e.Installments = &core.Installments{Current: i, Total: n.InstallmentsTotal}
		out = append(out, e)
	}
	return out
}
