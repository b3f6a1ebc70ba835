package services

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"poupa/internal/core"
)

const (
	// UpcomingInstallmentsLimit caps the installments timeline.
	UpcomingInstallmentsLimit = 10
	unknownPayer              = "Desconhecido"
)

type (
	// CategoryBreakdown is one row of the spend-versus-target view.
	CategoryBreakdown struct {
		Category      core.Category `json:"category"`
		Name          string        `json:"name"`
		Color         string        `json:"color"`
		Spent         core.Money    `json:"spent"`
		SharePercent  string        `json:"sharePercent"`
		TargetPercent string        `json:"targetPercent"`
		Budget        core.Money    `json:"budget"`
		OverTarget    bool          `json:"overTarget"`
	}

	PayerGroup struct {
		Payer    string         `json:"payer"`
		Total    core.Money     `json:"total"`
		Expenses []core.Expense `json:"expenses"`
	}

	// ScheduledPayment is one line of the next-month section of the report.
	ScheduledPayment struct {
		ExpenseID string     `json:"expenseId"`
		Label     string     `json:"label"`
		DueDate   core.Date  `json:"dueDate"`
		Amount    core.Money `json:"amount"`
		Recurring bool       `json:"recurring"`
	}

	// MonthReport is the month-end statement: this month's figures and the
	// payments already scheduled for the following month.
	MonthReport struct {
		Summary    core.MonthSummary  `json:"summary"`
		Expenses   []core.Expense     `json:"expenses"`
		ThirdParty []PayerGroup       `json:"thirdParty"`
		NextPeriod core.Period        `json:"nextPeriod"`
		Scheduled  []ScheduledPayment `json:"scheduled"`
		NextTotal  core.Money         `json:"nextTotal"`
	}
)

// Summarize computes income, own spending and balance for p.
func Summarize(l core.Ledger, p core.Period) core.MonthSummary {
	spend := Aggregate(SelectPeriod(l.Expenses, p))
	return core.MonthSummary{
		Period:  p,
		Income:  l.Income,
		Total:   spend.Total,
		Balance: l.Income.Sub(spend.Total),
	}
}

// Breakdown lists every category with a positive target, in catalog order.
func Breakdown(spend core.Spend, income core.Money, catalog core.Catalog) []CategoryBreakdown {
	var out []CategoryBreakdown
	for _, c := range core.Categories() {
		info := catalog[c]
		spent := spend.Of(c)
		if !info.Target.IsPositive() && spent.IsZero() {
			continue
		}
		share := SpentPercent(spent, income)
		targetPct := info.Target.Mul(hundred)
		out = append(out, CategoryBreakdown{
			Category:      c,
			Name:          categoryName(catalog, c),
			Color:         info.Color,
			Spent:         spent,
			SharePercent:  share.StringFixed(percentPrecision),
			TargetPercent: targetPct.StringFixed(percentPrecision),
			Budget:        CategoryBudget(income, info.Target),
			OverTarget:    !income.IsZero() && info.Target.IsPositive() && share.GreaterThan(targetPct),
		})
	}
	return out
}

// UpcomingInstallments returns installment entries due on or after today,
// earliest first, at most limit of them.
func UpcomingInstallments(ledger []core.Expense, today core.Date, limit int) []core.Expense {
	var out []core.Expense
	for _, e := range ledger {
		if e.IsInstallment() && !e.DueDate.Before(today.Time) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GroupByPayer groups third-party entries by payer, ordered by payer name.
func GroupByPayer(entries []core.Expense) []PayerGroup {
	idx := make(map[string]int)
	var groups []PayerGroup
	for _, e := range entries {
		if !e.IsThirdParty() {
			continue
		}
		payer := strings.TrimSpace(e.Payer)
		if payer == "" {
			payer = unknownPayer
		}
		i, ok := idx[payer]
		if !ok {
			i = len(groups)
			idx[payer] = i
			groups = append(groups, PayerGroup{Payer: payer})
		}
		groups[i].Total = groups[i].Total.Add(e.Amount)
		groups[i].Expenses = append(groups[i].Expenses, e)
	}
	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(groups, func(i, j int) bool {
		return col.CompareString(groups[i].Payer, groups[j].Payer) < 0
	})
	return groups
}

// ScheduledFor lists what is already due in p: installment entries dated in
// p and every monthly expense projected into p. Recurring expenses that
// start after p are left out.
func ScheduledFor(ledger []core.Expense, p core.Period) []ScheduledPayment {
	var out []ScheduledPayment
	for _, e := range ledger {
		if e.IsRecurring() {
			if p.Before(e.DueDate.Period()) {
				continue
			}
			proj, ok := ProjectToPeriod(e, p)
			if !ok {
				continue
			}
			out = append(out, scheduled(proj, true))
			continue
		}
		if e.IsInstallment() && p.Contains(e.DueDate) {
			out = append(out, scheduled(e, false))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate.Time)
	})
	return out
}

func scheduled(e core.Expense, recurring bool) ScheduledPayment {
	return ScheduledPayment{
		ExpenseID: e.ID,
		Label:     e.Label(),
		DueDate:   e.DueDate,
		Amount:    e.Amount,
		Recurring: recurring,
	}
}

// BuildMonthReport assembles the month-end report for p.
func BuildMonthReport(l core.Ledger, p core.Period) MonthReport {
	inPeriod := SelectPeriod(l.Expenses, p)
	own := make([]core.Expense, 0, len(inPeriod))
	for _, e := range inPeriod {
		if !e.IsThirdParty() {
			own = append(own, e)
		}
	}
	next := p.Next()
	sched := ScheduledFor(l.Expenses, next)
	var nextTotal core.Money
	for _, s := range sched {
		nextTotal = nextTotal.Add(s.Amount)
	}
	return MonthReport{
		Summary:    Summarize(l, p),
		Expenses:   own,
		ThirdParty: GroupByPayer(inPeriod),
		NextPeriod: next,
		Scheduled:  sched,
		NextTotal:  nextTotal,
	}
}
