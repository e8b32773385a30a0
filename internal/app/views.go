package app

import "codewords/internal/domain"

// CellView is a board cell as shown to a particular viewer. Owner is empty
// until the cell is revealed, unless the viewer holds the spymaster key.
type CellView struct {
	Index    int              `json:"index"`
	Word     string           `json:"word"`
	Revealed bool             `json:"revealed"`
	Owner    domain.CellOwner `json:"owner,omitempty"`
}

// PlayerView is the public listing of a participant.
type PlayerView struct {
	UserID string      `json:"user_id"`
	Team   domain.Team `json:"team"`
	Role   domain.Role `json:"role"`
}

// GameView is a projection of the authoritative state for one class of
// viewer. Both projections are rendered from the same state; nothing is
// duplicated or stored per viewer.
type GameView struct {
	ID               string           `json:"id"`
	Phase            domain.Phase     `json:"phase"`
	CurrentTeam      domain.Team      `json:"current_team"`
	Turn             int              `json:"turn"`
	GuessesRemaining int              `json:"guesses_remaining"`
	Winner           domain.Team      `json:"winner,omitempty"`
	WinReason        domain.WinReason `json:"win_reason,omitempty"`
	Version          int64            `json:"version"`
	Cells            []CellView       `json:"cells"`
	Players          []PlayerView     `json:"players"`
	Clues            []domain.Clue    `json:"clues"`
	LatestClue       *domain.Clue     `json:"latest_clue,omitempty"`
}

// SpymasterView renders the full board including unrevealed owners.
func SpymasterView(g *domain.Game) GameView {
	return buildView(g, true)
}

// OperativeView hides ownership of unrevealed cells.
func OperativeView(g *domain.Game) GameView {
	return buildView(g, false)
}

// ViewFor picks the projection appropriate for the given user. Unknown users
// and operatives get the hidden view; game over reveals everything.
func ViewFor(g *domain.Game, userID string) GameView {
	if g.Over() {
		return SpymasterView(g)
	}
	if pl, ok := g.Players[userID]; ok && pl.Role == domain.RoleSpymaster {
		return SpymasterView(g)
	}
	return OperativeView(g)
}

func buildView(g *domain.Game, fullKey bool) GameView {
	cells := make([]CellView, len(g.Board))
	for i, c := range g.Board {
		cv := CellView{Index: i, Word: c.Word, Revealed: c.Revealed}
		if fullKey || c.Revealed {
			cv.Owner = c.Owner
		}
		cells[i] = cv
	}

	players := make([]PlayerView, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, PlayerView{UserID: p.UserID, Team: p.Team, Role: p.Role})
	}

	view := GameView{
		ID:               g.ID,
		Phase:            g.Phase,
		CurrentTeam:      g.CurrentTeam,
		Turn:             g.Turn,
		GuessesRemaining: g.GuessesRemaining,
		Winner:           g.Winner,
		WinReason:        g.WinReason,
		Version:          g.Version,
		Cells:            cells,
		Players:          players,
		Clues:            g.Clues.History(),
	}
	if latest, ok := g.Clues.Latest(); ok {
		view.LatestClue = &latest
	}
	return view
}

// spymasterCells renders the full key for the private key_dealt event.
func spymasterCells(g *domain.Game) []CellView {
	return buildView(g, true).Cells
}
