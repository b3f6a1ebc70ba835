package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewExpenseValidate(t *testing.T) {
	good := NewExpense{
		Name:     "Aluguel",
		Amount:   Cents(150000),
		Category: FixedCosts,
		DueDate:  NewDate(2024, time.July, 5),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mod  func(*NewExpense)
		want error
	}{
		{"blank name", func(n *NewExpense) { n.Name = "  " }, ErrEmptyName},
		{"long name", func(n *NewExpense) { n.Name = strings.Repeat("a", 201) }, ErrNameTooLong},
		{"zero amount", func(n *NewExpense) { n.Amount = Cents(0) }, ErrInvalidAmount},
		{"bad category", func(n *NewExpense) { n.Category = "FOOD" }, ErrInvalidCategory},
		{"no date", func(n *NewExpense) { n.DueDate = Date{} }, ErrInvalidDate},
		{"negative installments", func(n *NewExpense) { n.InstallmentsTotal = -1 }, ErrInvalidInstallments},
		{"weekly", func(n *NewExpense) { n.Recurrence = "weekly" }, ErrInvalidRecurrence},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := good
			tc.mod(&n)
			if err := n.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNewExpenseNormalizeThirdParty(t *testing.T) {
	n := NewExpense{Name: " Jantar ", Category: Pleasures, Payer: " Ana "}.Normalize()
	if n.Category != Uncategorized || n.Payer != "Ana" || n.Name != "Jantar" {
		t.Fatalf("unexpected normalize result: %+v", n)
	}
}

func TestExpenseLabel(t *testing.T) {
	tests := []struct {
		name        string
		inst        *Installments
		want        string
		installment bool
	}{
		{"series", &Installments{Current: 2, Total: 10}, "TV (2/10)", true},
		{"single payment marker", &Installments{Current: 1, Total: 1}, "TV", false},
		{"plain", nil, "TV", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Expense{Name: "TV", Installments: tt.inst}
			if e.Label() != tt.want {
				t.Fatalf("Label = %q, want %q", e.Label(), tt.want)
			}
			if e.IsInstallment() != tt.installment {
				t.Fatalf("IsInstallment = %v, want %v", e.IsInstallment(), tt.installment)
			}
		})
	}
}

func TestExpenseValidateInstallments(t *testing.T) {
	base := Expense{ID: "a", Name: "TV", Amount: Cents(1000), Category: Comfort, DueDate: NewDate(2024, 7, 1)}
	tests := []struct {
		name    string
		inst    *Installments
		wantErr bool
	}{
		{"none", nil, false},
		{"one of one", &Installments{Current: 1, Total: 1}, false},
		{"two of three", &Installments{Current: 2, Total: 3}, false},
		{"zero total", &Installments{Current: 0, Total: 0}, true},
		{"current past total", &Installments{Current: 3, Total: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			e.Installments = tt.inst
			err := e.Validate()
			if tt.wantErr != errors.Is(err, ErrInvalidInstallments) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLedgerCloneIsDeep(t *testing.T) {
	l := Ledger{Expenses: []Expense{{ID: "a", Installments: &Installments{Current: 1, Total: 2}}}}
	c := l.Clone()
	c.Expenses[0].Installments.Current = 2
	c.Expenses[0].ID = "b"
	if l.Expenses[0].Installments.Current != 1 || l.Expenses[0].ID != "a" {
		t.Fatalf("clone shares memory with original")
	}
}

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()
	if len(cat) != len(Categories()) {
		t.Fatalf("catalog has %d entries", len(cat))
	}
	if !cat.Target(Uncategorized).IsZero() {
		t.Fatalf("uncategorized target must be zero")
	}
	sum := decimal.Zero
	for _, c := range Categories() {
		sum = sum.Add(cat.Target(c))
	}
	if !sum.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("default targets sum to %s", sum)
	}
	cat[Investments] = CategoryInfo{Target: decimal.Zero}
	if DefaultCatalog().Target(Investments).IsZero() {
		t.Fatalf("DefaultCatalog returned shared map")
	}
	if len(EditableCategories()) != 6 {
		t.Fatalf("editable = %v", EditableCategories())
	}
}

func TestTargetOverridesValidate(t *testing.T) {
	full := DefaultCatalog().Overrides()
	if err := full.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cases := []struct {
		name string
		mod  func(TargetOverrides)
		want error
	}{
		{"missing", func(o TargetOverrides) { delete(o, Knowledge) }, ErrMissingTarget},
		{"uncategorized", func(o TargetOverrides) { o[Uncategorized] = decimal.Zero }, ErrUnknownCategory},
		{"out of range", func(o TargetOverrides) { o[Goals] = decimal.RequireFromString("1.5") }, ErrTargetOutOfRange},
		{"sum", func(o TargetOverrides) { o[Goals] = decimal.RequireFromString("0.20") }, ErrTargetsSum},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := full.Clone()
			tc.mod(o)
			if err := o.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	// 99.6% rounds to 100
	near := full.Clone()
	near[Knowledge] = decimal.RequireFromString("0.046")
	if err := near.Validate(); err != nil {
		t.Fatalf("rounding tolerance: %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory(" fixed_costs "); err != nil || c != FixedCosts {
		t.Fatalf("got %v %v", c, err)
	}
	if _, err := ParseCategory("FOOD"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}
