package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"poupa/internal/core"
	"poupa/internal/services"
)

func TestJSONResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusCreated).Header("X-Test", "1").Body(map[string]int{"n": 1}).Write(rr)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr.Header().Get("X-Test") != "1" || !strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("headers=%v", rr.Header())
	}
	if strings.TrimSpace(rr.Body.String()) != `{"n":1}` {
		t.Fatalf("body=%q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(rr)
	if rr.Code != http.StatusNoContent || rr.Body.Len() != 0 || rr.Header().Get("Content-Type") != "" {
		t.Fatalf("empty response: code=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"bad request", badRequest("invalid period %q", "x"), http.StatusBadRequest, `bad request: invalid period "x"`},
		{"not found", fmt.Errorf("delete expense e1: %w", core.ErrExpenseNotFound), http.StatusNotFound, "Despesa não encontrada."},
		{"validation", fmt.Errorf("validate expense: %w", core.ErrEmptyName), http.StatusUnprocessableEntity, "Informe o nome da despesa."},
		{"purchase", fmt.Errorf("%w: income not set", services.ErrInvalidPurchase), http.StatusUnprocessableEntity, services.MsgInvalidPurchase},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError, "Erro interno. Tente novamente."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			if rr.Code != tt.status {
				t.Fatalf("status=%d want %d", rr.Code, tt.status)
			}
			if got := decode[errorBody](t, rr); got.Error != tt.msg {
				t.Fatalf("message=%q want %q", got.Error, tt.msg)
			}
		})
	}
}
