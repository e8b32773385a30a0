package app

import (
	"fmt"
	"time"

	"codewords/internal/domain"
)

// CommandKind identifies an entry in a game's command log.
type CommandKind string

const (
	CmdJoin        CommandKind = "join"
	CmdLeave       CommandKind = "leave"
	CmdStartGame   CommandKind = "start_game"
	CmdGiveClue    CommandKind = "give_clue"
	CmdSubmitGuess CommandKind = "submit_guess"
	CmdEndTurn     CommandKind = "end_turn"
	CmdForfeit     CommandKind = "forfeit"
)

// Command is one applied command. The log only contains commands that were
// accepted; rejected ones have no side effect and are never recorded.
type Command struct {
	Kind      CommandKind `json:"kind"`
	UserID    string      `json:"user_id,omitempty"`
	Team      domain.Team `json:"team,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	Word      string      `json:"word,omitempty"`
	Number    int         `json:"number,omitempty"`
	CellIndex int         `json:"cell_index,omitempty"`
	// ClueID and At preserve the identifiers minted when the command was
	// first applied, so replay reproduces the ledger byte for byte.
	ClueID string    `json:"clue_id,omitempty"`
	At     time.Time `json:"at,omitempty"`
}

// Snapshot captures the initial state of a game: the shuffled board and the
// starting team. Snapshot plus the command log reconstructs any later state.
type Snapshot struct {
	ID        string        `json:"id"`
	Board     []domain.Cell `json:"board"`
	FirstTeam domain.Team   `json:"first_team"`
}

// TakeSnapshot records the initial layout of a freshly created game.
func TakeSnapshot(g *domain.Game) Snapshot {
	board := make([]domain.Cell, len(g.Board))
	copy(board, g.Board)
	return Snapshot{ID: g.ID, Board: board, FirstTeam: g.CurrentTeam}
}

// Replay reconstructs a game by reapplying the command log to the initial
// snapshot. Application is deterministic: no randomness enters after board
// creation, and clue identifiers come from the log.
func (s *Service) Replay(snap Snapshot, log []Command) (*domain.Game, error) {
	board := make([]domain.Cell, len(snap.Board))
	copy(board, snap.Board)
	for i := range board {
		board[i].Revealed = false
	}

	g := &domain.Game{
		ID:          snap.ID,
		Board:       board,
		Players:     make(map[string]*domain.Player),
		Phase:       domain.PhaseWaiting,
		CurrentTeam: snap.FirstTeam,
	}

	for i, cmd := range log {
		var err error
		switch cmd.Kind {
		case CmdJoin:
			_, err = s.Join(g, cmd.UserID, cmd.Team, cmd.Role)
		case CmdLeave:
			_, err = s.Leave(g, cmd.UserID)
		case CmdStartGame:
			_, err = s.StartGame(g)
		case CmdGiveClue:
			_, err = s.applyClue(g, cmd.UserID, cmd.Word, cmd.Number, cmd.ClueID, cmd.At)
		case CmdSubmitGuess:
			_, err = s.SubmitGuess(g, cmd.UserID, cmd.CellIndex)
		case CmdEndTurn:
			_, err = s.EndTurn(g, cmd.UserID)
		case CmdForfeit:
			_, err = s.Forfeit(g, cmd.Team)
		default:
			err = fmt.Errorf("unknown command kind %q", cmd.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("replay failed at command %d (%s): %w", i, cmd.Kind, err)
		}
	}

	return g, nil
}
