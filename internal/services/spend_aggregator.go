package services

import "poupa/internal/core"

// Aggregate sums own spending by category. Third-party entries are skipped
// and categories without spending are left out of ByCategory.
func Aggregate(entries []core.Expense) core.Spend {
	s := core.Spend{ByCategory: make(map[core.Category]core.Money)}
	for _, e := range entries {
		if e.IsThirdParty() {
			continue
		}
		s.Total = s.Total.Add(e.Amount)
		s.ByCategory[e.Category] = s.ByCategory[e.Category].Add(e.Amount)
	}
	return s
}
