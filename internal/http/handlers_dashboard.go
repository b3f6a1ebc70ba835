package http

import (
	"net/http"
	"strings"

	"poupa/internal/core"
	"poupa/internal/services"
)

// handleDashboard serves the month view, cached per month and day until
// the next mutation.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	today := core.DateOf(s.now())
	key := period.String() + "|" + today.String()

	if d, ok := s.dashboards.Get(key); ok {
		NewJSONResponse().Header("X-Cache", "HIT").Body(d).Write(w)
		return
	}

	gen := s.generation.Load()
	d, err := s.ledger.Dashboard(r.Context(), period, today)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.cacheMu.Lock()
	if s.generation.Load() == gen {
		s.dashboards.Set(key, d)
	}
	s.cacheMu.Unlock()
	NewJSONResponse().Header("X-Cache", "MISS").Body(d).Write(w)
}

type advisorRequest struct {
	Category core.Category `json:"category"`
	Amount   core.Money    `json:"amount"`
	// Period defaults to the current month.
	Period *core.Period `json:"period,omitempty"`
}

func (s *Server) handleAdvisor(w http.ResponseWriter, r *http.Request) {
	var req advisorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	period := core.DateOf(s.now()).Period()
	if req.Period != nil {
		period = *req.Period
	}

	p := services.Purchase{
		Category: core.Category(strings.ToUpper(strings.TrimSpace(string(req.Category)))),
		Amount:   req.Amount,
	}
	advice, err := s.ledger.CheckPurchase(r.Context(), p, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(advice).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.ledger.MonthReport(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(report).Write(w)
}
