// Package game holds the pure rules of character creation: attribute
// derivation and the talent-point budget. It performs no I/O.
package game

import "fmt"

// Attribute bounds and the fallback starting age used when a creation
// payload or a regenerated record carries no age.
const (
	AttributeMin       = 0
	AttributeMax       = 10
	DefaultStartingAge = 16
)

// InnateAttributes are the six immutable founding stats of a character.
type InnateAttributes struct {
	RootBone      int `json:"root_bone"`
	Spirituality  int `json:"spirituality"`
	Comprehension int `json:"comprehension"`
	Fortune       int `json:"fortune"`
	Charm         int `json:"charm"`
	Temperament   int `json:"temperament"`
}

// Sum returns the total of all six attributes.
func (a InnateAttributes) Sum() int {
	return a.RootBone + a.Spirituality + a.Comprehension + a.Fortune + a.Charm + a.Temperament
}

// Validate checks each attribute against [AttributeMin, AttributeMax] and
// names the first offending attribute.
func (a InnateAttributes) Validate() error {
	check := []struct {
		name  string
		value int
	}{
		{"root_bone", a.RootBone},
		{"spirituality", a.Spirituality},
		{"comprehension", a.Comprehension},
		{"fortune", a.Fortune},
		{"charm", a.Charm},
		{"temperament", a.Temperament},
	}
	for _, c := range check {
		if c.value < AttributeMin || c.value > AttributeMax {
			return fmt.Errorf("attribute %s must be between %d and %d, got %d",
				c.name, AttributeMin, AttributeMax, c.value)
		}
	}
	return nil
}

// DerivedState is the gameplay portion of a fresh game state record.
type DerivedState struct {
	Health         int
	SpiritualPower int
	DivineSense    int
	Age            int
	MaxLifespan    int
}

// DeriveFunc maps innate attributes and an age to a derived state. The exact
// formulas are balance data; callers hold a DeriveFunc so they survive
// formula changes.
type DeriveFunc func(attrs InnateAttributes, age int) DerivedState

// Derive is the standard derivation. Deterministic: a lost game state
// rebuilt from the same inputs reproduces the original values.
func Derive(attrs InnateAttributes, age int) DerivedState {
	if age <= 0 {
		age = DefaultStartingAge
	}
	return DerivedState{
		Health:         100 + attrs.RootBone*10,
		SpiritualPower: 50 + attrs.Spirituality*5,
		DivineSense:    30 + attrs.Comprehension*3,
		Age:            age,
		MaxLifespan:    80 + attrs.RootBone*5,
	}
}
