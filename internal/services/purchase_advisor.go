package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"poupa/internal/core"
)

const (
	msgAffordable    = "Sim! Você tem %s de saldo para %s este mês."
	msgNotAffordable = "Não. Esta compra excede seu orçamento para %s em %s. Considere esperar ou reajustar seus gastos."

	// MsgInvalidPurchase is shown to the user when CanAfford rejects its input.
	MsgInvalidPurchase = "Por favor, preencha todos os campos com valores válidos."
)

var ErrInvalidPurchase = errors.New("invalid purchase")

type (
	Purchase struct {
		Category core.Category `json:"category"`
		Amount   core.Money    `json:"amount"`
	}

	// Advice is the verdict for one hypothetical purchase. Headroom is the
	// amount available before the purchase; Shortfall is set only when the
	// purchase does not fit.
	Advice struct {
		Affordable bool       `json:"affordable"`
		Headroom   core.Money `json:"headroom"`
		Shortfall  core.Money `json:"shortfall"`
		Message    string     `json:"message"`
	}
)

// CanAfford checks a purchase against the remaining budget of its own
// category in the current period. Other categories and the overall balance
// are never considered.
func CanAfford(p Purchase, income core.Money, spend map[core.Category]core.Money, catalog core.Catalog) (Advice, error) {
	switch {
	case p.Amount.Cents <= 0:
		return Advice{}, fmt.Errorf("%w: amount must be positive", ErrInvalidPurchase)
	case p.Category == core.Uncategorized || !p.Category.IsValid():
		return Advice{}, fmt.Errorf("%w: category %q", ErrInvalidPurchase, string(p.Category))
	case income.Cents <= 0:
		return Advice{}, fmt.Errorf("%w: income not set", ErrInvalidPurchase)
	}

	budget := CategoryBudget(income, catalog.Target(p.Category))
	headroom := budget.Sub(spend[p.Category])
	name := categoryName(catalog, p.Category)

	if p.Amount.Cents <= headroom.Cents {
		return Advice{
			Affordable: true,
			Headroom:   headroom,
			Message:    fmt.Sprintf(msgAffordable, headroom, name),
		}, nil
	}
	shortfall := p.Amount.Sub(headroom)
	return Advice{
		Headroom:  headroom,
		Shortfall: shortfall,
		Message:   fmt.Sprintf(msgNotAffordable, name, shortfall),
	}, nil
}

// CategoryBudget is income × target, rounded half-up to centavos.
func CategoryBudget(income core.Money, target decimal.Decimal) core.Money {
	return core.MoneyFromDecimal(income.Decimal().Mul(target))
}
