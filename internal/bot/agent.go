package bot

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"codewords/internal/domain"
)

// Agent represents an autonomous bot player filling an open role.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent constructs an agent for the given bot ID with the default
// strategy. The rng is seeded from the bot ID so replays of the same lobby
// behave consistently.
func NewAgent(botID string) (*Agent, error) {
	if botID == "" {
		return nil, fmt.Errorf("bot id is required")
	}

	h := fnv.New64a()
	h.Write([]byte(botID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	return &Agent{
		ID:       botID,
		Name:     GetBotDisplayName(botID),
		Strategy: &RandomBrain{rng: rng},
	}, nil
}

// Play asks the agent to calculate its move based on the current game state.
func (a *Agent) Play(game *domain.Game) (Move, error) {
	player, ok := game.Players[a.ID]
	if !ok {
		return Move{EndTurn: true}, fmt.Errorf("agent %s is not in game %s", a.ID, game.ID)
	}
	return a.Strategy.CalculateMove(game, player)
}
