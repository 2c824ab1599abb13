package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudgetWithinCapAccepted(t *testing.T) {
	// Attributes sum 30, origin 5, root 10, talents 5+8: total 58 of 60.
	in := BudgetInput{
		TierCap:    60,
		Attributes: InnateAttributes{RootBone: 5, Spirituality: 5, Comprehension: 5, Fortune: 5, Charm: 5, Temperament: 5},
		Origin:     &CostedSelection{Name: "noble house", Cost: 5},
		SpiritRoot: &CostedSelection{Name: "fire root", Cost: 10},
		Talents: []CostedSelection{
			{Name: "sword heart", Cost: 5},
			{Name: "alchemy sense", Cost: 8},
		},
	}

	total, err := ValidateBudget(in)
	assert.NoError(t, err)
	assert.Equal(t, 58, total)
}

func TestBudgetExceededRejected(t *testing.T) {
	in := BudgetInput{
		TierCap:    60,
		Attributes: InnateAttributes{RootBone: 5, Spirituality: 5, Comprehension: 5, Fortune: 5, Charm: 5, Temperament: 5},
		Origin:     &CostedSelection{Cost: 5},
		SpiritRoot: &CostedSelection{Cost: 10},
		Talents: []CostedSelection{
			{Cost: 5},
			{Cost: 8},
			{Cost: 3},
		},
	}

	total, err := ValidateBudget(in)
	assert.Equal(t, 61, total)
	assert.Error(t, err)

	var budgetErr *BudgetError
	assert.ErrorAs(t, err, &budgetErr)
	assert.Equal(t, 61, budgetErr.Total)
	assert.Equal(t, 60, budgetErr.Cap)
	assert.Contains(t, err.Error(), "61")
	assert.Contains(t, err.Error(), "60")
}

func TestBudgetExactlyAtCap(t *testing.T) {
	in := BudgetInput{
		TierCap:    60,
		Attributes: InnateAttributes{RootBone: 10, Spirituality: 10, Comprehension: 10, Fortune: 10, Charm: 10, Temperament: 10},
	}

	total, err := ValidateBudget(in)
	assert.NoError(t, err)
	assert.Equal(t, 60, total)

	in.TierCap = 59
	_, err = ValidateBudget(in)
	assert.Error(t, err)
}

func TestBudgetOptionalSelections(t *testing.T) {
	in := BudgetInput{
		TierCap:    40,
		Attributes: InnateAttributes{RootBone: 6, Spirituality: 6, Comprehension: 6, Fortune: 6, Charm: 6, Temperament: 6},
	}

	total, err := ValidateBudget(in)
	assert.NoError(t, err)
	assert.Equal(t, 36, total)
}
