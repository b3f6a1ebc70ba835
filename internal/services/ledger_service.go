package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"poupa/internal/amqp"
	"poupa/internal/core"
	"poupa/internal/store"
)

// ChangePublisher is notified after every successful ledger mutation.
type ChangePublisher interface {
	PublishLedgerChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error
}

// LedgerService applies user edits to the stored ledger and answers the
// read-side questions (dashboard, purchase check, month report). Every
// read-modify-write runs under one mutex; the stores stay last-write-wins.
type LedgerService struct {
	ledger    store.LedgerStore
	targets   store.TargetStore
	publisher ChangePublisher
	expander  *InstallmentExpander

	mu sync.Mutex
}

// Dashboard is everything the main screen shows for one month.
type Dashboard struct {
	Period      core.Period         `json:"period"`
	Summary     core.MonthSummary   `json:"summary"`
	Breakdown   []CategoryBreakdown `json:"breakdown"`
	Suggestions []string            `json:"suggestions"`
	Expenses    []core.Expense      `json:"expenses"`
	Upcoming    []core.Expense      `json:"upcomingInstallments"`
	ThirdParty  []PayerGroup        `json:"thirdParty"`
}

// NewLedgerService wires the stores. publisher may be nil and expander
// defaults to uuid-based ids.
func NewLedgerService(ledger store.LedgerStore, targets store.TargetStore, publisher ChangePublisher, expander *InstallmentExpander) *LedgerService {
	if expander == nil {
		expander = NewInstallmentExpander(nil)
	}
	return &LedgerService{
		ledger:    ledger,
		targets:   targets,
		publisher: publisher,
		expander:  expander,
	}
}

func (s *LedgerService) Ledger(ctx context.Context) (core.Ledger, error) {
	l, err := s.ledger.Load(ctx)
	if err != nil {
		return core.Ledger{}, fmt.Errorf("load ledger: %w", err)
	}
	return l, nil
}

func (s *LedgerService) SetIncome(ctx context.Context, income core.Money) error {
	if income.Cents < 0 {
		return core.ErrNegativeIncome
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	l.Income = income
	if err := s.ledger.Save(ctx, l); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	slog.InfoContext(ctx, "Income updated", "income_cents", income.Cents)
	s.publish(ctx, amqp.ChangeIncome, nil, nil)
	return nil
}

// AddExpense validates the input, expands installments and appends the
// resulting entries. It returns the stored entries.
func (s *LedgerService) AddExpense(ctx context.Context, n core.NewExpense) ([]core.Expense, error) {
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("validate expense: %w", err)
	}
	created := s.expander.Expand(n)

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.ledger.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	l.Expenses = append(l.Expenses, created...)
	if err := s.ledger.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("save ledger: %w", err)
	}

	slog.InfoContext(ctx, "Expense added",
		"name", n.Name,
		"amount_cents", n.Amount.Cents,
		"category", n.Category,
		"entries", len(created))
	s.publishExpenses(ctx, amqp.ChangeExpenseAdded, expenseIDs(created), created...)
	return created, nil
}

// UpdateExpense replaces the entry with the same id. Installment series are
// not re-expanded; only the addressed entry changes.
func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) error {
	if e.IsThirdParty() {
		e.Category = core.Uncategorized
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validate expense: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	i := l.Find(e.ID)
	if i < 0 {
		return fmt.Errorf("update expense %s: %w", e.ID, core.ErrExpenseNotFound)
	}
	old := l.Expenses[i]
	l.Expenses[i] = e
	if err := s.ledger.Save(ctx, l); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	slog.InfoContext(ctx, "Expense updated", "id", e.ID)
	s.publishExpenses(ctx, amqp.ChangeExpenseEdited, []string{e.ID}, old, e)
	return nil
}

// DeleteExpense removes exactly one entry; sibling installments stay.
func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	i := l.Find(id)
	if i < 0 {
		return fmt.Errorf("delete expense %s: %w", id, core.ErrExpenseNotFound)
	}
	removed := l.Expenses[i]
	l.Expenses = append(l.Expenses[:i], l.Expenses[i+1:]...)
	if err := s.ledger.Save(ctx, l); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	s.publishExpenses(ctx, amqp.ChangeExpenseDelete, []string{id}, removed)
	return nil
}

// Catalog returns the effective catalog.
func (s *LedgerService) Catalog(ctx context.Context) (core.Catalog, error) {
	o, err := s.targets.LoadTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	return ResolveTargets(o), nil
}

// SaveTargets stores a complete, validated set of targets.
func (s *LedgerService) SaveTargets(ctx context.Context, o core.TargetOverrides) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("validate targets: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.targets.SaveTargets(ctx, o); err != nil {
		return fmt.Errorf("save targets: %w", err)
	}
	s.publish(ctx, amqp.ChangeTargets, nil, nil)
	return nil
}

// ResetTargets drops every override so the defaults apply again.
func (s *LedgerService) ResetTargets(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.targets.ClearTargets(ctx); err != nil {
		return fmt.Errorf("clear targets: %w", err)
	}
	s.publish(ctx, amqp.ChangeTargets, nil, nil)
	return nil
}

// snapshot loads ledger and targets concurrently.
func (s *LedgerService) snapshot(ctx context.Context) (core.Ledger, core.Catalog, error) {
	var (
		l core.Ledger
		o core.TargetOverrides
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if l, err = s.ledger.Load(gctx); err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if o, err = s.targets.LoadTargets(gctx); err != nil {
			return fmt.Errorf("load targets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Ledger{}, nil, err
	}
	return l, ResolveTargets(o), nil
}

// CheckPurchase answers whether p fits the remaining budget of its category in period.
func (s *LedgerService) CheckPurchase(ctx context.Context, p Purchase, period core.Period) (Advice, error) {
	l, catalog, err := s.snapshot(ctx)
	if err != nil {
		return Advice{}, err
	}
	spend := Aggregate(SelectPeriod(l.Expenses, period))
	return CanAfford(p, l.Income, spend.ByCategory, catalog)
}

// Dashboard builds the month view. today only drives the upcoming
// installments list.
func (s *LedgerService) Dashboard(ctx context.Context, period core.Period, today core.Date) (Dashboard, error) {
	l, catalog, err := s.snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	inPeriod := SelectPeriod(l.Expenses, period)
	spend := Aggregate(inPeriod)
	return Dashboard{
		Period:      period,
		Summary:     Summarize(l, period),
		Breakdown:   Breakdown(spend, l.Income, catalog),
		Suggestions: Suggest(spend.ByCategory, l.Income, catalog),
		Expenses:    inPeriod,
		Upcoming:    UpcomingInstallments(l.Expenses, today, UpcomingInstallmentsLimit),
		ThirdParty:  GroupByPayer(inPeriod),
	}, nil
}

func (s *LedgerService) MonthReport(ctx context.Context, period core.Period) (MonthReport, error) {
	l, err := s.ledger.Load(ctx)
	if err != nil {
		return MonthReport{}, fmt.Errorf("load ledger: %w", err)
	}
	return BuildMonthReport(l, period), nil
}

// publish notifies the publisher. Failures are logged; the mutation
// already succeeded locally.
func (s *LedgerService) publish(ctx context.Context, kind amqp.ChangeKind, periods, ids []string) {
	s.send(ctx, amqp.NewLedgerChangeMessage(kind, periods, ids))
}

// publishExpenses announces a change to entries, before and after images
// alike.
func (s *LedgerService) publishExpenses(ctx context.Context, kind amqp.ChangeKind, ids []string, entries ...core.Expense) {
	msg := amqp.NewLedgerChangeMessage(kind, touchedPeriods(entries...), ids)
	for _, e := range entries {
		if e.IsRecurring() {
			msg.Recurring = true
			break
		}
	}
	s.send(ctx, msg)
}

func (s *LedgerService) send(ctx context.Context, msg *amqp.LedgerChangeMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			"kind", msg.Kind,
			"error", err)
	}
}

func touchedPeriods(entries ...core.Expense) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		p := e.DueDate.Period().String()
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func expenseIDs(entries []core.Expense) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
