package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveFormulas(t *testing.T) {
	attrs := InnateAttributes{
		RootBone:      7,
		Spirituality:  5,
		Comprehension: 4,
		Fortune:       3,
		Charm:         2,
		Temperament:   6,
	}

	state := Derive(attrs, 20)

	assert.Equal(t, 170, state.Health)
	assert.Equal(t, 75, state.SpiritualPower)
	assert.Equal(t, 42, state.DivineSense)
	assert.Equal(t, 20, state.Age)
	assert.Equal(t, 115, state.MaxLifespan)
}

func TestDeriveDefaultsAge(t *testing.T) {
	state := Derive(InnateAttributes{}, 0)
	assert.Equal(t, DefaultStartingAge, state.Age)

	state = Derive(InnateAttributes{}, -3)
	assert.Equal(t, DefaultStartingAge, state.Age)
}

func TestDeriveIsDeterministic(t *testing.T) {
	attrs := InnateAttributes{RootBone: 9, Spirituality: 1, Comprehension: 10}
	first := Derive(attrs, 33)
	second := Derive(attrs, 33)
	assert.Equal(t, first, second)
}

func TestValidateAttributeBounds(t *testing.T) {
	valid := InnateAttributes{RootBone: 0, Spirituality: 10, Comprehension: 5}
	assert.NoError(t, valid.Validate())

	tooHigh := valid
	tooHigh.Fortune = 11
	err := tooHigh.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fortune")

	negative := valid
	negative.Temperament = -1
	err = negative.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "temperament")
}

func TestInnateSum(t *testing.T) {
	attrs := InnateAttributes{RootBone: 1, Spirituality: 2, Comprehension: 3, Fortune: 4, Charm: 5, Temperament: 6}
	assert.Equal(t, 21, attrs.Sum())
}
