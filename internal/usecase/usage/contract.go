package usage

import "github.com/kailas-cloud/gitaverse/internal/usecase/budget"

// BudgetReader provides read-only access to generation token counters.
type BudgetReader interface {
	Usage() budget.Usage
}
