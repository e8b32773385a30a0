package domain

import "errors"

// ErrClueExistsForTurn is returned when a second clue targets the same turn.
var ErrClueExistsForTurn = errors.New("clue already recorded for this turn")

// ClueLedger is the append-only, chronologically ordered record of clues
// given during a game. Entries are never mutated or deleted.
type ClueLedger struct {
	entries []Clue
}

// Append records a clue. It fails if a clue already exists for the clue's
// turn; only one clue per turn is legal.
func (l *ClueLedger) Append(c Clue) error {
	if len(l.entries) > 0 && l.entries[len(l.entries)-1].Turn >= c.Turn {
		return ErrClueExistsForTurn
	}
	l.entries = append(l.entries, c)
	return nil
}

// History returns all clues in chronological order. The returned slice is a
// copy; callers cannot mutate the ledger through it.
func (l *ClueLedger) History() []Clue {
	out := make([]Clue, len(l.entries))
	copy(out, l.entries)
	return out
}

// Latest returns the most recent clue, if any.
func (l *ClueLedger) Latest() (Clue, bool) {
	if len(l.entries) == 0 {
		return Clue{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Len returns the number of recorded clues.
func (l *ClueLedger) Len() int {
	return len(l.entries)
}
