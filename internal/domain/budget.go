package domain

// BudgetWindow is the accounting period of a token budget counter.
type BudgetWindow string

const (
	BudgetDaily   BudgetWindow = "daily"
	BudgetMonthly BudgetWindow = "monthly"
)
