package domain

import "strings"

// RevealOutcome classifies a single cell reveal from the guessing team's
// perspective.
type RevealOutcome string

const (
	// OutcomeTeamCell means the guess hit the guessing team's own color.
	OutcomeTeamCell RevealOutcome = "team_cell"
	// OutcomeOpponentCell means the guess hit the opposing team's color.
	OutcomeOpponentCell RevealOutcome = "opponent_cell"
	// OutcomeNeutral means the guess hit a bystander cell.
	OutcomeNeutral RevealOutcome = "neutral"
	// OutcomeAssassin means the guess hit the instant-loss cell.
	OutcomeAssassin RevealOutcome = "assassin"
)

// ClassifyReveal maps a revealed owner to the outcome for the guessing team.
func ClassifyReveal(guesser Team, owner CellOwner) RevealOutcome {
	switch owner {
	case OwnerAssassin:
		return OutcomeAssassin
	case OwnerNeutral:
		return OutcomeNeutral
	case OwnerFor(guesser):
		return OutcomeTeamCell
	default:
		return OutcomeOpponentCell
	}
}

// ClueWordLeaks reports whether the clue word trivially identifies an
// unrevealed board word: a case-insensitive exact or substring match in
// either direction.
func ClueWordLeaks(board []Cell, word string) bool {
	clue := strings.ToLower(strings.TrimSpace(word))
	if clue == "" {
		return true
	}
	for _, c := range board {
		if c.Revealed {
			continue
		}
		cell := strings.ToLower(c.Word)
		if strings.Contains(clue, cell) || strings.Contains(cell, clue) {
			return true
		}
	}
	return false
}

// IsAssassin reports whether the cell is the instant-loss cell.
func IsAssassin(c Cell) bool {
	return c.Owner == OwnerAssassin
}

// IsTeamComplete reports whether every cell of the given color is revealed.
func IsTeamComplete(board []Cell, owner CellOwner) bool {
	return UnrevealedCount(board, owner) == 0
}

// WinVerdict is the result of evaluating terminal conditions after a reveal.
type WinVerdict struct {
	Over   bool
	Winner Team
	Reason WinReason
}

// EvaluateWin checks terminal conditions after the guessing team revealed
// the given cell. Loss conditions for the guesser are checked before win
// conditions: assassin first, then completion of the opposing color, then
// completion of the guesser's own color.
func EvaluateWin(board []Cell, guesser Team, revealed Cell) WinVerdict {
	if IsAssassin(revealed) {
		return WinVerdict{Over: true, Winner: guesser.Opponent(), Reason: WinReasonAssassinHit}
	}
	if IsTeamComplete(board, OwnerFor(guesser.Opponent())) {
		return WinVerdict{Over: true, Winner: guesser.Opponent(), Reason: WinReasonWordsCleared}
	}
	if IsTeamComplete(board, OwnerFor(guesser)) {
		return WinVerdict{Over: true, Winner: guesser, Reason: WinReasonWordsCleared}
	}
	return WinVerdict{}
}
