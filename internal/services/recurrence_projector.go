// Package services provides the budgeting engine and its orchestration.
//
// This file implements the Strategy Pattern for recurrence projection.
// Each recurrence rule has its own projector that decides where a recurring
// expense lands in a given month.

package services

import (
	"fmt"

	"poupa/internal/core"
)

// Projector is the strategy interface for placing a recurring expense in a period.
type Projector interface {
	// Project returns the due date the expense would have in p.
	Project(due core.Date, p core.Period) core.Date
}

// MonthlyProjector keeps the day of month, clamped to the last day of p.
type MonthlyProjector struct{}

func (MonthlyProjector) Project(due core.Date, p core.Period) core.Date {
	return p.DateClamped(due.Day())
}

// projectors maps recurrence rules to their strategies. Read-only after init.
var projectors = map[core.Recurrence]Projector{
	core.Monthly: MonthlyProjector{},
}

// GetProjector returns the projector for a recurrence rule.
func GetProjector(r core.Recurrence) (Projector, error) {
	p, ok := projectors[r]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence: %q", string(r))
	}
	return p, nil
}

// ProjectToPeriod returns a copy of e moved into p, keeping its id. The
// second result is false when e does not recur. The projection is never
// persisted.
func ProjectToPeriod(e core.Expense, p core.Period) (core.Expense, bool) {
	if !e.IsRecurring() {
		return core.Expense{}, false
	}
	proj, err := GetProjector(e.Recurrence)
	if err != nil {
		return core.Expense{}, false
	}
	out := e
	if e.Installments != nil {
		inst := *e.Installments
		out.Installments = &inst
	}
	out.DueDate = proj.Project(e.DueDate, p)
	return out, true
}
