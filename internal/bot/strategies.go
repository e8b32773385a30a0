package bot

import (
	"fmt"
	"math/rand"

	"codewords/internal/domain"
	"codewords/internal/words"
)

// RandomBrain is the baseline strategy: clues are safe vocabulary words with
// a count of one, guesses are drawn uniformly from the unrevealed pool.
// It makes the lobby playable, not competitive.
type RandomBrain struct {
	rng *rand.Rand
}

// CalculateMove picks the action matching the bot's role and the game phase.
func (b *RandomBrain) CalculateMove(game *domain.Game, player *domain.Player) (Move, error) {
	switch {
	case game.Phase == domain.PhaseSpymasterClue && player.Role == domain.RoleSpymaster:
		return b.planClue(game)
	case game.Phase == domain.PhaseTeamGuess && player.Role == domain.RoleOperative:
		return b.planGuess(game)
	default:
		return Move{}, fmt.Errorf("no action for %s/%s in phase %s", player.Team, player.Role, game.Phase)
	}
}

func (b *RandomBrain) planClue(game *domain.Game) (Move, error) {
	pool := words.All()
	for attempts := 0; attempts < 50; attempts++ {
		candidate := pool[b.rng.Intn(len(pool))]
		if !domain.ClueWordLeaks(game.Board, candidate) {
			return Move{GiveClue: true, Word: candidate, Number: 1}, nil
		}
	}
	return Move{}, fmt.Errorf("no safe clue word found")
}

func (b *RandomBrain) planGuess(game *domain.Game) (Move, error) {
	var hidden []int
	for i, c := range game.Board {
		if !c.Revealed {
			hidden = append(hidden, i)
		}
	}
	if len(hidden) == 0 {
		return Move{EndTurn: true}, nil
	}
	return Move{Guess: true, CellIndex: hidden[b.rng.Intn(len(hidden))]}, nil
}
