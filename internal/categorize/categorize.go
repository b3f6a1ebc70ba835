// Package categorize guesses a budget category from an expense name.
package categorize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"poupa/internal/core"
)

// MinNameLength is the shortest trimmed name that gets a suggestion.
const MinNameLength = 4

// Rule maps a keyword pattern to a category.
type Rule struct {
	Pattern  string
	Category core.Category
}

// DefaultRules are evaluated in order; the first match wins.
var DefaultRules = []Rule{
	{Pattern: `aluguel|luz|água|internet|condomínio|gás`, Category: core.FixedCosts},
	{Pattern: `supermercado|feira|padaria|transporte|gasolina`, Category: core.Comfort},
	{Pattern: `restaurante|bar|cinema|show|festa|viagem curta|ifood`, Category: core.Pleasures},
	{Pattern: `curso|livro|workshop|palestra`, Category: core.Knowledge},
	{Pattern: `aporte|investimento|tesouro|cdb|ações|fii`, Category: core.Investments},
	{Pattern: `viagem|carro|casa|reforma|meta`, Category: core.Goals},
}

type compiledRule struct {
	re       *regexp.Regexp
	category core.Category
}

type Suggester struct {
	rules []compiledRule
}

// New compiles rules. Patterns are matched against the lower-cased name.
func New(rules []Rule) (*Suggester, error) {
	s := &Suggester{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		if !r.Category.IsValid() {
			return nil, fmt.Errorf("rule %d: %w: %q", i, core.ErrInvalidCategory, r.Category)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: compile pattern: %w", i, err)
		}
		s.rules = append(s.rules, compiledRule{re: re, category: r.Category})
	}
	return s, nil
}

// Default returns a Suggester over DefaultRules.
func Default() *Suggester {
	s, err := New(DefaultRules)
	if err != nil {
		panic(err)
	}
	return s
}

// Suggest returns the category for name and whether a suggestion applies.
// Names shorter than MinNameLength get none; unmatched names get
// Uncategorized.
func (s *Suggester) Suggest(name string) (core.Category, bool) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < MinNameLength {
		return "", false
	}

	lower := strings.ToLower(name)
	for _, r := range s.rules {
		if r.re.MatchString(lower) {
			return r.category, true
		}
	}
	return core.Uncategorized, true
}
