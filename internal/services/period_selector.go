package services

import "poupa/internal/core"

// SelectPeriod returns the entries whose due date falls in p, in ledger order.
func SelectPeriod(ledger []core.Expense, p core.Period) []core.Expense {
	out := make([]core.Expense, 0, len(ledger))
	for _, e := range ledger {
		if p.Contains(e.DueDate) {
			out = append(out, e)
		}
	}
	return out
}
