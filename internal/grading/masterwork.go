package grading

import (
	"fmt"
	"math"
)

// MasterworkRank is how far an affix has been masterworked.
type MasterworkRank int

const (
	MasterworkNone     MasterworkRank = 0
	MasterworkQ25      MasterworkRank = 1
	MasterworkCapstone MasterworkRank = 2
)

func (r MasterworkRank) Multiplier() float64 {
	switch r {
	case MasterworkQ25:
		return 1.25
	case MasterworkCapstone:
		return 1.75
	default:
		return 1.0
	}
}

func (r MasterworkRank) Valid() bool {
	return r >= MasterworkNone && r <= MasterworkCapstone
}

// MasterworkValue projects an affix value after masterworking, floored to an
// integer the same way the game client displays it.
func MasterworkValue(base float64, rank MasterworkRank) (float64, error) {
	if !rank.Valid() {
		return 0, fmt.Errorf("unknown masterwork rank %d", rank)
	}
	return math.Floor(base * rank.Multiplier()), nil
}
