package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Investments   Category = "INVESTMENTS"
	FixedCosts    Category = "FIXED_COSTS"
	Comfort       Category = "COMFORT"
	Goals         Category = "GOALS"
	Pleasures     Category = "PLEASURES"
	Knowledge     Category = "KNOWLEDGE"
	Uncategorized Category = "UNCATEGORIZED"
)

type (
	// Category is one of the fixed budget buckets.
	Category string

	CategoryInfo struct {
		Name   string
		Target decimal.Decimal // fraction of income, 0..1
		Color  string
	}

	// Catalog maps every category to its display data and effective target.
	Catalog map[Category]CategoryInfo
)

var ErrInvalidCategory = errors.New("invalid category")

// categoryOrder is the declaration order used by every ordered iteration.
var categoryOrder = []Category{
	Investments,
	FixedCosts,
	Comfort,
	Goals,
	Pleasures,
	Knowledge,
	Uncategorized,
}

var defaultCatalog = map[Category]CategoryInfo{
	Investments:   {Name: "Investimentos", Target: decimal.RequireFromString("0.25"), Color: "#10B981"},
	FixedCosts:    {Name: "Custos Fixos", Target: decimal.RequireFromString("0.30"), Color: "#3B82F6"},
	Comfort:       {Name: "Conforto", Target: decimal.RequireFromString("0.15"), Color: "#6366F1"},
	Goals:         {Name: "Metas", Target: decimal.RequireFromString("0.15"), Color: "#F97316"},
	Pleasures:     {Name: "Prazeres", Target: decimal.RequireFromString("0.10"), Color: "#EC4899"},
	Knowledge:     {Name: "Conhecimento", Target: decimal.RequireFromString("0.05"), Color: "#8B5CF6"},
	Uncategorized: {Name: "Não Categorizado", Target: decimal.Zero, Color: "#6B7280"},
}

// Categories returns all categories in declaration order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// DefaultCatalog returns a fresh copy of the built-in catalog.
func DefaultCatalog() Catalog {
	c := make(Catalog, len(defaultCatalog))
	for k, v := range defaultCatalog {
		c[k] = v
	}
	return c
}

// EditableCategories lists the categories whose default target is positive.
func EditableCategories() []Category {
	var out []Category
	for _, c := range categoryOrder {
		if defaultCatalog[c].Target.IsPositive() {
			out = append(out, c)
		}
	}
	return out
}

func (c Category) IsValid() bool {
	_, ok := defaultCatalog[c]
	return ok
}

// Name returns the display name of a known category, or the raw value.
func (c Category) Name() string {
	if info, ok := defaultCatalog[c]; ok {
		return info.Name
	}
	return string(c)
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Target returns the effective target for c, zero when absent.
func (cat Catalog) Target(c Category) decimal.Decimal {
	if info, ok := cat[c]; ok {
		return info.Target
	}
	return decimal.Zero
}

// Overrides extracts the targets of every editable category.
func (cat Catalog) Overrides() TargetOverrides {
	out := make(TargetOverrides)
	for _, c := range EditableCategories() {
		if info, ok := cat[c]; ok {
			out[c] = info.Target
		}
	}
	return out
}
