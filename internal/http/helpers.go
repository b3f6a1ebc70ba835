package http

import (
	"errors"
	"log/slog"
	"net/http"

	"poupa/internal/core"
	"poupa/internal/services"
)

// userMessages maps validation failures to the text shown to the user,
// checked in order.
var userMessages = []struct {
	err error
	msg string
}{
	{services.ErrInvalidPurchase, services.MsgInvalidPurchase},
	{core.ErrEmptyName, "Informe o nome da despesa."},
	{core.ErrNameTooLong, "O nome da despesa é longo demais."},
	{core.ErrInvalidAmount, "Informe um valor válido."},
	{core.ErrInvalidCategory, "Categoria inválida."},
	{core.ErrInvalidDate, "Informe uma data válida."},
	{core.ErrInvalidPeriod, "Mês inválido."},
	{core.ErrInvalidInstallments, "Número de parcelas inválido."},
	{core.ErrInvalidRecurrence, "Recorrência inválida."},
	{core.ErrNegativeIncome, "A receita não pode ser negativa."},
	{core.ErrEmptyID, "Identificador da despesa ausente."},
	{core.ErrTargetsSum, "A soma das metas deve ser exatamente 100%."},
	{core.ErrTargetOutOfRange, "Cada meta deve estar entre 0% e 100%."},
	{core.ErrMissingTarget, "Informe a meta de todas as categorias."},
	{core.ErrUnknownCategory, "Categoria desconhecida nas metas."},
}

// writeError maps err to a status and a JSON error body. Unexpected errors
// are logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadRequest):
		BadRequestError(err.Error()).Write(w)
		return
	case errors.Is(err, core.ErrExpenseNotFound):
		NotFoundError("Despesa não encontrada.").Write(w)
		return
	}

	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			UnprocessableEntityError(m.msg).Write(w)
			return
		}
	}

	slog.ErrorContext(r.Context(), "Request failed",
		"component", "http",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
	InternalServerError("Erro interno. Tente novamente.").Write(w)
}
