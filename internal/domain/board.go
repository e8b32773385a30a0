package domain

import (
	"fmt"
	"math/rand"
)

// Layout fixes the per-color cell counts for a board. The first team is the
// one holding the larger allotment and moves first.
type Layout struct {
	FirstTeam  int
	SecondTeam int
	Neutral    int
	Assassin   int
}

// DefaultLayout is the classic 25-cell board: 9/8 team cells, 7 neutral,
// 1 assassin.
func DefaultLayout() Layout {
	return Layout{FirstTeam: 9, SecondTeam: 8, Neutral: 7, Assassin: 1}
}

// Size returns the total number of cells the layout produces.
func (l Layout) Size() int {
	return l.FirstTeam + l.SecondTeam + l.Neutral + l.Assassin
}

// NewBoard builds a shuffled board from the given words. first is the team
// receiving the larger allotment. Words beyond the layout size are ignored.
func NewBoard(rng *rand.Rand, words []string, first Team, layout Layout) ([]Cell, error) {
	size := layout.Size()
	if len(words) < size {
		return nil, fmt.Errorf("need %d words for board, have %d", size, len(words))
	}

	owners := make([]CellOwner, 0, size)
	for i := 0; i < layout.FirstTeam; i++ {
		owners = append(owners, OwnerFor(first))
	}
	for i := 0; i < layout.SecondTeam; i++ {
		owners = append(owners, OwnerFor(first.Opponent()))
	}
	for i := 0; i < layout.Neutral; i++ {
		owners = append(owners, OwnerNeutral)
	}
	for i := 0; i < layout.Assassin; i++ {
		owners = append(owners, OwnerAssassin)
	}
	rng.Shuffle(len(owners), func(i, j int) { owners[i], owners[j] = owners[j], owners[i] })

	board := make([]Cell, size)
	for i := range board {
		board[i] = Cell{Word: words[i], Owner: owners[i]}
	}
	return board, nil
}

// UnrevealedCount returns how many cells of the given color are still hidden.
func UnrevealedCount(board []Cell, owner CellOwner) int {
	count := 0
	for _, c := range board {
		if c.Owner == owner && !c.Revealed {
			count++
		}
	}
	return count
}

// RevealedCount returns how many cells on the board have been revealed.
func RevealedCount(board []Cell) int {
	count := 0
	for _, c := range board {
		if c.Revealed {
			count++
		}
	}
	return count
}
