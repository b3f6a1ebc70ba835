package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"poupa/internal/amqp"
	"poupa/internal/core"
	"poupa/internal/services"
	"poupa/internal/sheets"
	"poupa/internal/store"
)

// RevisionSource reports a counter that grows with every ledger save.
type RevisionSource interface {
	Revision(ctx context.Context) (int64, error)
}

type Options struct {
	// Revisions lets the periodic sync skip work when nothing changed. Nil
	// exports on every tick.
	Revisions RevisionSource
	// Concurrency bounds simultaneous sheet exports.
	Concurrency int
	Now         func() time.Time
}

// SyncWorker keeps the exported month reports in step with the ledger.
type SyncWorker struct {
	ledger      store.LedgerStore
	exporter    sheets.ReportExporter
	revisions   RevisionSource
	concurrency int
	now         func() time.Time

	mu           sync.Mutex
	lastRevision int64
	synced       bool
}

func NewSyncWorker(ledger store.LedgerStore, exporter sheets.ReportExporter, opts Options) *SyncWorker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SyncWorker{
		ledger:      ledger,
		exporter:    exporter,
		revisions:   opts.Revisions,
		concurrency: opts.Concurrency,
		now:         opts.Now,
	}
}

// HandleLedgerChange re-exports the months a change can show up in.
func (w *SyncWorker) HandleLedgerChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	slog.InfoContext(ctx, "Processing ledger change",
		"component", "worker",
		"message_id", msg.ID,
		"kind", msg.Kind,
		"periods", msg.Periods)

	periods := w.affectedPeriods(ctx, msg)
	if len(periods) == 0 {
		return nil
	}
	return w.ExportPeriods(ctx, periods)
}

// affectedPeriods maps a change to report months. An expense in month M is
// listed in M's report and in M-1's next-month schedule; a recurring one
// also in every later schedule through next month. Income feeds every
// summary, so the current month is refreshed. Targets are not part of the
// report.
func (w *SyncWorker) affectedPeriods(ctx context.Context, msg *amqp.LedgerChangeMessage) []core.Period {
	switch msg.Kind {
	case amqp.ChangeTargets:
		return nil
	case amqp.ChangeIncome:
		return []core.Period{w.currentPeriod()}
	}

	seen := make(map[core.Period]bool)
	var out []core.Period
	add := func(p core.Period) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, s := range msg.Periods {
		p, err := core.ParsePeriod(s)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed period in message",
				"component", "worker",
				"message_id", msg.ID,
				"period", s)
			continue
		}
		add(p.Prev())
		add(p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })

	// A monthly entry is projected into every month after it starts, so
	// each report from the earliest touched one up to next month changed.
	if msg.Recurring && len(out) > 0 {
		last := w.currentPeriod().Next()
		for p := out[0]; !last.Before(p); p = p.Next() {
			add(p)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	}
	return out
}

// ExportPeriods loads the ledger once and exports the given months.
func (w *SyncWorker) ExportPeriods(ctx context.Context, periods []core.Period) error {
	ledger, err := w.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, p := range periods {
		g.Go(func() error {
			report := services.BuildMonthReport(ledger, p)
			if err := w.exporter.ExportMonthReport(gctx, report); err != nil {
				return fmt.Errorf("export %s: %w", p, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// SyncOnce exports the current and next month when the ledger revision
// moved since the last successful sync. It reports whether it exported.
func (w *SyncWorker) SyncOnce(ctx context.Context) (bool, error) {
	var rev int64
	if w.revisions != nil {
		var err error
		rev, err = w.revisions.Revision(ctx)
		if err != nil {
			return false, fmt.Errorf("read ledger revision: %w", err)
		}
		w.mu.Lock()
		unchanged := w.synced && rev == w.lastRevision
		w.mu.Unlock()
		if unchanged {
			return false, nil
		}
	}

	current := w.currentPeriod()
	if err := w.ExportPeriods(ctx, []core.Period{current, current.Next()}); err != nil {
		return false, err
	}

	w.mu.Lock()
	w.lastRevision = rev
	w.synced = true
	w.mu.Unlock()
	return true, nil
}

// Run calls SyncOnce immediately and then every interval until ctx is done.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		exported, err := w.SyncOnce(ctx)
		switch {
		case err != nil:
			slog.ErrorContext(ctx, "Periodic sync failed", "component", "worker", "error", err)
		case exported:
			slog.InfoContext(ctx, "Periodic sync exported reports", "component", "worker")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *SyncWorker) currentPeriod() core.Period {
	return core.DateOf(w.now()).Period()
}
