package engine

import (
	"github.com/shopspring/decimal"
)

// LengthBonus multiplies a match score once its length reaches MinLength.
// Bonuses are cumulative: a 6-match receives every bonus at or below 6.
type LengthBonus struct {
	MinLength  int
	Multiplier decimal.Decimal
}

// Rules holds every tunable number used by detection, scoring and chains.
type Rules struct {
	BasePerTile      int
	LengthBonuses    []LengthBonus
	ShapeMultipliers map[Shape]decimal.Decimal
	ShapeWeights     map[Shape]int
	ChainMultipliers []decimal.Decimal // index 0 is pass 1; the last entry repeats
	MaxPasses        int
}

// DefaultRules returns the standard scoring rules.
func DefaultRules() Rules {
	return Rules{
		BasePerTile: 10,
		LengthBonuses: []LengthBonus{
			{MinLength: 4, Multiplier: decimal.RequireFromString("1.5")},
			{MinLength: 5, Multiplier: decimal.NewFromInt(2)},
			{MinLength: 6, Multiplier: decimal.NewFromInt(3)},
		},
		ShapeMultipliers: map[Shape]decimal.Decimal{
			ShapeT: decimal.RequireFromString("2.5"),
			ShapeL: decimal.NewFromInt(2),
		},
		ShapeWeights: map[Shape]int{
			ShapeT:          1000,
			ShapeL:          800,
			ShapeVertical:   100,
			ShapeHorizontal: 50,
		},
		ChainMultipliers: []decimal.Decimal{
			decimal.NewFromInt(1),
			decimal.RequireFromString("1.2"),
			decimal.RequireFromString("1.5"),
			decimal.NewFromInt(2),
			decimal.RequireFromString("2.5"),
			decimal.NewFromInt(3),
			decimal.NewFromInt(4),
			decimal.NewFromInt(5),
		},
		MaxPasses: 20,
	}
}

// PassMultiplier returns the multiplier for a 1-based chain pass.
// Passes beyond the table use its last entry.
func (r Rules) PassMultiplier(pass int) decimal.Decimal {
	if len(r.ChainMultipliers) == 0 {
		return decimal.NewFromInt(1)
	}
	if pass < 1 {
		pass = 1
	}
	if pass > len(r.ChainMultipliers) {
		return r.ChainMultipliers[len(r.ChainMultipliers)-1]
	}
	return r.ChainMultipliers[pass-1]
}

// shapeWeight returns the priority weight for s.
func (r Rules) shapeWeight(s Shape) int {
	return r.ShapeWeights[s]
}

// MatchScore scores a single match: tiles times base, length bonuses,
// shape bonus, then the combo multiplier, floored.
func (r Rules) MatchScore(m Match, combo decimal.Decimal) int {
	n := m.Len()
	score := decimal.NewFromInt(int64(n * r.BasePerTile))
	for _, b := range r.LengthBonuses {
		if n >= b.MinLength {
			score = score.Mul(b.Multiplier)
		}
	}
	if mult, ok := r.ShapeMultipliers[m.Shape]; ok {
		score = score.Mul(mult)
	}
	score = score.Mul(combo)
	return int(score.Floor().IntPart())
}

// ApplyMultiplier scales base by mult and floors the result.
func ApplyMultiplier(base int, mult decimal.Decimal) int {
	return int(decimal.NewFromInt(int64(base)).Mul(mult).Floor().IntPart())
}
