package http

import (
	"net/http"

	"poupa/internal/core"
)

type incomeBody struct {
	Income core.Money `json:"income"`
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledger.Ledger(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(incomeBody{Income: l.Income}).Write(w)
}

// handleSetIncome accepts {"income": 6500} or {"income": "R$ 6.500,00"}.
func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	var body incomeBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.SetIncome(r.Context(), body.Income); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Body(body).Write(w)
}
