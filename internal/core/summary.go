package core

// CategoryAmount represents a net amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int
	Month      int // 1-12
	Income     Money
	Expenses   Money
	ByCategory []CategoryAmount
}

// Net returns income minus expenses in cents.
func (o MonthOverview) Net() int64 {
	return o.Income.Cents - o.Expenses.Cents
}
