package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"poupa/internal/core"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks that the ledger store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.ready(ctx); err != nil {
		ErrorResponse(http.StatusServiceUnavailable, "not ready: "+err.Error()).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}

type categoryView struct {
	Category core.Category   `json:"category"`
	Name     string          `json:"name"`
	Color    string          `json:"color"`
	Target   decimal.Decimal `json:"target"`
	Editable bool            `json:"editable"`
}

// handleCategories lists the effective catalog in display order.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.ledger.Catalog(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	editable := make(map[core.Category]bool)
	for _, c := range core.EditableCategories() {
		editable[c] = true
	}

	out := make([]categoryView, 0, len(catalog))
	for _, c := range core.Categories() {
		info := catalog[c]
		out = append(out, categoryView{
			Category: c,
			Name:     info.Name,
			Color:    info.Color,
			Target:   info.Target,
			Editable: editable[c],
		})
	}
	NewJSONResponse().Body(out).Write(w)
}

type suggestionView struct {
	Suggested bool          `json:"suggested"`
	Category  core.Category `json:"category,omitempty"`
	Name      string        `json:"name,omitempty"`
}

func (s *Server) handleSuggestCategory(w http.ResponseWriter, r *http.Request) {
	name := sanitizeInput(r.URL.Query().Get("name"))
	c, ok := s.suggester.Suggest(name)
	if !ok {
		NewJSONResponse().Body(suggestionView{}).Write(w)
		return
	}
	NewJSONResponse().Body(suggestionView{Suggested: true, Category: c, Name: c.Name()}).Write(w)
}

// handleGetTargets returns the effective target of every editable category.
func (s *Server) handleGetTargets(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.ledger.Catalog(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(catalog.Overrides()).Write(w)
}

// handleSaveTargets stores a complete target set. Keys are category codes,
// case-insensitive; values are fractions of income.
func (s *Server) handleSaveTargets(w http.ResponseWriter, r *http.Request) {
	var raw map[string]decimal.Decimal
	if err := decodeJSON(w, r, &raw); err != nil {
		writeError(w, r, err)
		return
	}

	o := make(core.TargetOverrides, len(raw))
	for k, v := range raw {
		o[core.Category(strings.ToUpper(strings.TrimSpace(k)))] = v
	}
	if err := s.ledger.SaveTargets(r.Context(), o); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	s.handleGetTargets(w, r)
}

func (s *Server) handleResetTargets(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.ResetTargets(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	s.handleGetTargets(w, r)
}
