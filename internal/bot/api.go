package bot

import "codewords/internal/domain"

// Move represents the decision made by a bot for its pending action.
type Move struct {
	// GiveClue is set when the bot acts as spymaster.
	GiveClue bool
	Word     string
	Number   int

	// Guess is set when the bot acts as operative.
	Guess     bool
	CellIndex int

	// EndTurn closes the guess window without another guess.
	EndTurn bool
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(game *domain.Game, player *domain.Player) (Move, error)
}
