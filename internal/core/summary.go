package core

// Spend is the aggregate of a set of own (non third-party) expenses.
type Spend struct {
	Total      Money
	ByCategory map[Category]Money
}

// Of returns the spend for c; absent categories read as zero.
func (s Spend) Of(c Category) Money {
	return s.ByCategory[c]
}

// MonthSummary is the headline figure of a month.
type MonthSummary struct {
	Period  Period `json:"period"`
	Income  Money  `json:"income"`
	Total   Money  `json:"total"`
	Balance Money  `json:"balance"`
}
