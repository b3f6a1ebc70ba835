// Package memory keeps the ledger in process memory, optionally mirrored to
// a JSON file so state survives restarts.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"

	"poupa/internal/core"
)

// StateKey names the document root in the JSON file.
const StateKey = "poupa-ai-financials"

type (
	Store struct {
		mu      sync.Mutex
		path    string
		ledger  core.Ledger
		targets core.TargetOverrides
	}

	document struct {
		Income   core.Money                 `json:"income"`
		Expenses []core.Expense             `json:"expenses"`
		Targets  map[string]decimal.Decimal `json:"targets,omitempty"`
	}
)

func New() *Store {
	return &Store{}
}

// NewFromFile loads state from path when it exists and writes every change
// back to it. A missing file starts an empty ledger.
func NewFromFile(path string) (*Store, error) {
	s := &Store{path: path}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	var wrapper map[string]document
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}
	doc := wrapper[StateKey]
	s.ledger = core.Ledger{Income: doc.Income, Expenses: doc.Expenses}
	if len(doc.Targets) > 0 {
		s.targets = make(core.TargetOverrides, len(doc.Targets))
		for k, v := range doc.Targets {
			s.targets[core.Category(k)] = v
		}
	}
	return s, nil
}

func (s *Store) Load(_ context.Context) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone(), nil
}

func (s *Store) Save(_ context.Context, l core.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = l.Clone()
	return s.flush()
}

func (s *Store) LoadTargets(_ context.Context) (core.TargetOverrides, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targets.Clone(), nil
}

func (s *Store) SaveTargets(_ context.Context, o core.TargetOverrides) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = o.Clone()
	return s.flush()
}

func (s *Store) ClearTargets(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = nil
	return s.flush()
}

// flush writes the state file atomically. Caller holds mu.
func (s *Store) flush() error {
	if s.path == "" {
		return nil
	}
	doc := document{Income: s.ledger.Income, Expenses: s.ledger.Expenses}
	if doc.Expenses == nil {
		doc.Expenses = []core.Expense{}
	}
	if len(s.targets) > 0 {
		doc.Targets = make(map[string]decimal.Decimal, len(s.targets))
		for k, v := range s.targets {
			doc.Targets[string(k)] = v
		}
	}
	raw, err := json.MarshalIndent(map[string]document{StateKey: doc}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
