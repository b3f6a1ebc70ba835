package google

import (
	"fmt"

	"poupa/internal/core"
	"poupa/internal/services"
)

const dateLayout = "02/01/2006"

// reportRows lays the month report out top to bottom: summary, own
// expenses, third-party expenses per payer, then next month's schedule.
// Amounts go out as numbers so the sheet can sum them.
func reportRows(r services.MonthReport) [][]any {
	p := r.Summary.Period
	rows := [][]any{
		{"Relatório mensal", monthLabel(p)},
		{},
		{"Resumo"},
		{"Receita", amount(r.Summary.Income)},
		{"Total de despesas", amount(r.Summary.Total)},
		{"Saldo", amount(r.Summary.Balance)},
		{},
		{"Despesas do mês"},
		{"Data", "Descrição", "Categoria", "Valor"},
	}
	for _, e := range r.Expenses {
		rows = append(rows, []any{e.DueDate.Format(dateLayout), e.Label(), e.Category.Name(), amount(e.Amount)})
	}

	if len(r.ThirdParty) > 0 {
		rows = append(rows,
			[]any{},
			[]any{"Despesas de terceiros"},
			[]any{"Pagador", "Data", "Descrição", "Valor"},
		)
		for _, g := range r.ThirdParty {
			for _, e := range g.Expenses {
				rows = append(rows, []any{g.Payer, e.DueDate.Format(dateLayout), e.Label(), amount(e.Amount)})
			}
			rows = append(rows, []any{"Subtotal " + g.Payer, "", "", amount(g.Total)})
		}
	}

	rows = append(rows,
		[]any{},
		[]any{"Pagamentos previstos para " + monthLabel(r.NextPeriod)},
		[]any{"Data", "Descrição", "Tipo", "Valor"},
	)
	for _, s := range r.Scheduled {
		kind := "Parcela"
		if s.Recurring {
			kind = "Recorrente"
		}
		rows = append(rows, []any{s.DueDate.Format(dateLayout), s.Label, kind, amount(s.Amount)})
	}
	rows = append(rows, []any{"Total previsto", "", "", amount(r.NextTotal)})

	return rows
}

func monthLabel(p core.Period) string {
	return fmt.Sprintf("%02d/%d", int(p.Month), p.Year)
}

func amount(m core.Money) float64 {
	return m.Decimal().InexactFloat64()
}
