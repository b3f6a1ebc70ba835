package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"poupa/internal/core"
)

const (
	msgSetIncome     = "Defina seu valor disponível para receber sugestões."
	msgOverTarget    = "Você gastou %s%% da sua renda em %s, acima da meta de %s%%. Considere reduzir gastos aqui."
	msgInvestments   = "Lembre-se de alocar %s%% para %s. Fazer seu dinheiro trabalhar para você é fundamental."
	msgKnowledge     = "Considere reservar uma parte da sua renda para %s. Investir em si mesmo é sempre um bom negócio!"
	msgWellAligned   = "Seus gastos estão bem alinhados com as metas. Ótimo trabalho!"
	percentPrecision = 2
)

var hundred = decimal.NewFromInt(100)

// Suggest compares spending to the effective targets and returns advisory
// messages. Categories are visited in catalog order so output is stable.
func Suggest(byCategory map[core.Category]core.Money, income core.Money, catalog core.Catalog) []string {
	if income.IsZero() {
		return []string{msgSetIncome}
	}

	var out []string
	for _, c := range core.Categories() {
		target := catalog.Target(c)
		if !target.IsPositive() {
			continue
		}
		spent := SpentPercent(byCategory[c], income)
		targetPct := target.Mul(hundred)
		if spent.GreaterThan(targetPct) {
			out = append(out, fmt.Sprintf(msgOverTarget,
				formatPercent(spent.StringFixed(percentPrecision)),
				categoryName(catalog, c),
				formatPercent(targetPct.Round(percentPrecision).String())))
		}
	}

	if byCategory[core.Investments].IsZero() {
		out = append(out, fmt.Sprintf(msgInvestments,
			formatPercent(catalog.Target(core.Investments).Mul(hundred).Round(percentPrecision).String()),
			categoryName(catalog, core.Investments)))
	}
	if byCategory[core.Knowledge].IsZero() {
		out = append(out, fmt.Sprintf(msgKnowledge, categoryName(catalog, core.Knowledge)))
	}

	if len(out) == 0 {
		return []string{msgWellAligned}
	}
	return out
}

// SpentPercent returns 100 × spent / income, exact to the decimal package's
// division precision. Zero income yields zero.
func SpentPercent(spent, income core.Money) decimal.Decimal {
	if income.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(spent.Cents).Mul(hundred).Div(decimal.NewFromInt(income.Cents))
}

func categoryName(catalog core.Catalog, c core.Category) string {
	if info, ok := catalog[c]; ok && info.Name != "" {
		return info.Name
	}
	return c.Name()
}

// formatPercent switches the decimal mark to a comma.
func formatPercent(s string) string {
	return strings.Replace(s, ".", ",", 1)
}
