package game

import "fmt"

// CostedSelection is anything consuming talent points at creation.
type CostedSelection struct {
	Name string
	Cost int
}

// BudgetInput is one creation attempt measured against a tier cap. Origin
// and SpiritRoot are optional; Talents carries every selected talent, each
// already resolved to an existing row by the caller.
type BudgetInput struct {
	TierCap    int
	Attributes InnateAttributes
	Origin     *CostedSelection
	SpiritRoot *CostedSelection
	Talents    []CostedSelection
}

// BudgetError reports a creation attempt exceeding its tier cap.
type BudgetError struct {
	Total int
	Cap   int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("talent point cost %d exceeds tier budget %d", e.Total, e.Cap)
}

// TotalCost sums innate attributes and every selection cost.
func (in BudgetInput) TotalCost() int {
	total := in.Attributes.Sum()
	if in.Origin != nil {
		total += in.Origin.Cost
	}
	if in.SpiritRoot != nil {
		total += in.SpiritRoot.Cost
	}
	for _, t := range in.Talents {
		total += t.Cost
	}
	return total
}

// ValidateBudget accepts or rejects a creation attempt against the tier cap.
// On acceptance it returns the computed total; on rejection the error names
// both total and cap. The server only validates the client's selection, it
// never optimizes it.
func ValidateBudget(in BudgetInput) (int, error) {
	total := in.TotalCost()
	if total > in.TierCap {
		return total, &BudgetError{Total: total, Cap: in.TierCap}
	}
	return total, nil
}
