package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"poupa/internal/amqp"
	"poupa/internal/core"
	"poupa/internal/services"
	"poupa/internal/store/memory"
)

type recordingExporter struct {
	mu      sync.Mutex
	periods []string
	reports map[string]services.MonthReport
	err     error
}

func (r *recordingExporter) ExportMonthReport(_ context.Context, rep services.MonthReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	p := rep.Summary.Period.String()
	r.periods = append(r.periods, p)
	if r.reports == nil {
		r.reports = make(map[string]services.MonthReport)
	}
	r.reports[p] = rep
	return nil
}

func (r *recordingExporter) exported() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.periods...)
	sort.Strings(out)
	return out
}

type fakeRevisions struct {
	rev int64
	err error
}

func (f *fakeRevisions) Revision(context.Context) (int64, error) { return f.rev, f.err }

func fixedNow() time.Time { return time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC) }

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	err := s.Save(context.Background(), core.Ledger{
		Income: core.Cents(500000),
		Expenses: []core.Expense{
			{ID: "a", Name: "Aluguel", Amount: core.Cents(150000), Category: core.FixedCosts, DueDate: core.NewDate(2024, time.July, 5), Recurrence: core.Monthly},
			{ID: "b", Name: "Curso", Amount: core.Cents(30000), Category: core.Knowledge, DueDate: core.NewDate(2024, time.August, 2)},
		},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func recurringChange(kind amqp.ChangeKind, periods ...string) *amqp.LedgerChangeMessage {
	msg := amqp.NewLedgerChangeMessage(kind, periods, nil)
	msg.Recurring = true
	return msg
}

func TestHandleLedgerChange(t *testing.T) {
	tests := []struct {
		name string
		msg  *amqp.LedgerChangeMessage
		want []string
	}{
		{
			name: "expense change exports its month and the month before",
			msg:  amqp.NewLedgerChangeMessage(amqp.ChangeExpenseAdded, []string{"2024-08"}, []string{"b"}),
			want: []string{"2024-07", "2024-08"},
		},
		{
			name: "installment fan-out dedupes overlapping months",
			msg:  amqp.NewLedgerChangeMessage(amqp.ChangeExpenseAdded, []string{"2024-07", "2024-08", "2024-09"}, nil),
			want: []string{"2024-06", "2024-07", "2024-08", "2024-09"},
		},
		{
			name: "january reaches back into december",
			msg:  amqp.NewLedgerChangeMessage(amqp.ChangeExpenseDelete, []string{"2025-01"}, nil),
			want: []string{"2024-12", "2025-01"},
		},
		{
			name: "malformed periods are skipped",
			msg:  amqp.NewLedgerChangeMessage(amqp.ChangeExpenseEdited, []string{"July", "2024-07"}, nil),
			want: []string{"2024-06", "2024-07"},
		},
		{
			name: "recurring change refreshes every schedule through next month",
			msg:  recurringChange(amqp.ChangeExpenseEdited, "2024-04"),
			want: []string{"2024-03", "2024-04", "2024-05", "2024-06", "2024-07", "2024-08"},
		},
		{
			name: "recurring change starting after next month stays local",
			msg:  recurringChange(amqp.ChangeExpenseAdded, "2024-11"),
			want: []string{"2024-10", "2024-11"},
		},
		{
			name: "income exports the current month",
			msg:  amqp.NewLedgerChangeMessage(amqp.ChangeIncome, nil, nil),
			want: []string{"2024-07"},
		},
		{
			name: "targets export nothing",
			msg:  amqp.NewLedgerChangeMessage(amqp.ChangeTargets, nil, nil),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &recordingExporter{}
			w := NewSyncWorker(seededStore(t), exp, Options{Concurrency: 2, Now: fixedNow})

			if err := w.HandleLedgerChange(context.Background(), tt.msg); err != nil {
				t.Fatalf("HandleLedgerChange() error = %v", err)
			}
			if got := exp.exported(); !equal(got, tt.want) {
				t.Errorf("exported = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleLedgerChange_ReportContent(t *testing.T) {
	exp := &recordingExporter{}
	w := NewSyncWorker(seededStore(t), exp, Options{Now: fixedNow})

	msg := amqp.NewLedgerChangeMessage(amqp.ChangeExpenseAdded, []string{"2024-08"}, []string{"b"})
	if err := w.HandleLedgerChange(context.Background(), msg); err != nil {
		t.Fatal(err)
	}

	july := exp.reports["2024-07"]
	if july.Summary.Total != core.Cents(150000) {
		t.Errorf("July total = %v", july.Summary.Total)
	}
	if july.NextTotal != core.Cents(150000) {
		t.Errorf("July schedule for August = %v, want only the projected rent", july.NextTotal)
	}
	aug := exp.reports["2024-08"]
	if aug.Summary.Total != core.Cents(30000) {
		t.Errorf("August total = %v", aug.Summary.Total)
	}
}

func TestHandleLedgerChange_ExportFailureIsReturned(t *testing.T) {
	exp := &recordingExporter{err: errors.New("quota exceeded")}
	w := NewSyncWorker(seededStore(t), exp, Options{Now: fixedNow})

	err := w.HandleLedgerChange(context.Background(), amqp.NewLedgerChangeMessage(amqp.ChangeIncome, nil, nil))
	if err == nil {
		t.Fatal("expected error so the message is requeued")
	}
}

func TestSyncOnce(t *testing.T) {
	exp := &recordingExporter{}
	revs := &fakeRevisions{rev: 3}
	w := NewSyncWorker(seededStore(t), exp, Options{Revisions: revs, Now: fixedNow})
	ctx := context.Background()

	exported, err := w.SyncOnce(ctx)
	if err != nil || !exported {
		t.Fatalf("first SyncOnce() = %v, %v", exported, err)
	}
	if got := exp.exported(); !equal(got, []string{"2024-07", "2024-08"}) {
		t.Errorf("exported = %v", got)
	}

	exported, err = w.SyncOnce(ctx)
	if err != nil || exported {
		t.Errorf("unchanged revision should skip, got %v, %v", exported, err)
	}

	revs.rev = 4
	exported, err = w.SyncOnce(ctx)
	if err != nil || !exported {
		t.Errorf("new revision should export, got %v, %v", exported, err)
	}
}

func TestSyncOnce_RevisionError(t *testing.T) {
	w := NewSyncWorker(seededStore(t), &recordingExporter{}, Options{Revisions: &fakeRevisions{err: errors.New("db locked")}, Now: fixedNow})
	if _, err := w.SyncOnce(context.Background()); err == nil {
		t.Error("expected revision error")
	}
}

func TestSyncOnce_FailedExportIsRetried(t *testing.T) {
	exp := &recordingExporter{err: errors.New("offline")}
	w := NewSyncWorker(seededStore(t), exp, Options{Revisions: &fakeRevisions{rev: 1}, Now: fixedNow})
	ctx := context.Background()

	if _, err := w.SyncOnce(ctx); err == nil {
		t.Fatal("expected export error")
	}

	exp.err = nil
	exported, err := w.SyncOnce(ctx)
	if err != nil || !exported {
		t.Errorf("sync after failure = %v, %v; want retry", exported, err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	exp := &recordingExporter{}
	w := NewSyncWorker(seededStore(t), exp, Options{Now: fixedNow})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx, time.Hour)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(exp.exported()) == 0 {
		select {
		case <-deadline:
			t.Fatal("Run did not sync immediately")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
