package http

import (
	"net/http"
	"strings"

	"poupa/internal/core"
	"poupa/internal/services"
)

// handleListExpenses returns the whole ledger, or one month of it when the
// query names a period.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledger.Ledger(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	if !hasPeriod(q) {
		NewJSONResponse().Body(nonNil(l.Expenses)).Write(w)
		return
	}
	p, err := parsePeriod(q, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(nonNil(services.SelectPeriod(l.Expenses, p))).Write(w)
}

// handleCreateExpense stores a new expense; installment purchases come back
// as one entry per month.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var n core.NewExpense
	if err := decodeJSON(w, r, &n); err != nil {
		writeError(w, r, err)
		return
	}
	n.Name = sanitizeInput(n.Name)
	n.Payer = sanitizeInput(n.Payer)
	n.Category = core.Category(strings.ToUpper(string(n.Category)))

	created, err := s.ledger.AddExpense(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

// handleUpdateExpense replaces one entry. The id in the path wins over any
// id in the body.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var e core.Expense
	if err := decodeJSON(w, r, &e); err != nil {
		writeError(w, r, err)
		return
	}
	e.ID = r.PathValue("id")
	e.Name = strings.TrimSpace(sanitizeInput(e.Name))
	e.Payer = strings.TrimSpace(sanitizeInput(e.Payer))
	e.Category = core.Category(strings.ToUpper(string(e.Category)))

	if err := s.ledger.UpdateExpense(r.Context(), e); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	if e.IsThirdParty() {
		e.Category = core.Uncategorized
	}
	NewJSONResponse().Body(e).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func nonNil(es []core.Expense) []core.Expense {
	if es == nil {
		return []core.Expense{}
	}
	return es
}
