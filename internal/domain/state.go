package domain

import "time"

// Phase represents the lifecycle stage of a Codewords game.
type Phase string

const (
	// PhaseWaiting is the pre-game state where players pick teams and roles.
	PhaseWaiting Phase = "waiting"
	// PhaseSpymasterClue means the current team's spymaster must give a clue.
	PhaseSpymasterClue Phase = "spymaster_clue"
	// PhaseTeamGuess means the current team's operatives are guessing cells.
	PhaseTeamGuess Phase = "team_guess"
	// PhaseGameOver is the terminal state after a winner is decided.
	PhaseGameOver Phase = "game_over"
)

// Team identifies one of the two competing sides.
type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

// Valid reports whether t is one of the two playable teams.
func (t Team) Valid() bool {
	return t == TeamRed || t == TeamBlue
}

// CellOwner is the hidden affiliation of a board cell.
type CellOwner string

const (
	OwnerRed     CellOwner = "red"
	OwnerBlue    CellOwner = "blue"
	OwnerNeutral CellOwner = "neutral"
	// OwnerAssassin marks the instant-loss cell.
	OwnerAssassin CellOwner = "assassin"
)

// OwnerFor maps a team to its cell color.
func OwnerFor(t Team) CellOwner {
	if t == TeamRed {
		return OwnerRed
	}
	return OwnerBlue
}

// Team returns the team owning this color. ok is false for neutral and
// assassin cells, which belong to no team.
func (o CellOwner) Team() (Team, bool) {
	switch o {
	case OwnerRed:
		return TeamRed, true
	case OwnerBlue:
		return TeamBlue, true
	}
	return "", false
}

// Role is what a player does for their team.
type Role string

const (
	// RoleSpymaster gives clues and sees the full board key.
	RoleSpymaster Role = "spymaster"
	// RoleOperative guesses cells and sees only revealed ownership.
	RoleOperative Role = "operative"
)

// WinReason explains why a game ended, for announcers and settlement.
type WinReason string

const (
	WinReasonAssassinHit  WinReason = "assassin_hit"
	WinReasonWordsCleared WinReason = "words_cleared"
	WinReasonForfeit      WinReason = "forfeit"
)

// Cell is a single board position. Word and Owner are immutable after board
// creation; Revealed flips false->true exactly once.
type Cell struct {
	Word     string    `json:"word"`
	Owner    CellOwner `json:"owner"`
	Revealed bool      `json:"revealed"`
}

// Player holds the domain state for a participant in a game.
type Player struct {
	UserID string
	Team   Team
	Role   Role
}

// Clue is a spymaster's hint: a word plus the number of related board words.
// Immutable once created.
type Clue struct {
	ID          string    `json:"id"`
	Team        Team      `json:"team"`
	SpymasterID string    `json:"spymaster_id"`
	Word        string    `json:"word"`
	Number      int       `json:"number"`
	Turn        int       `json:"turn"`
	CreatedAt   time.Time `json:"created_at"`
}

// Game captures the authoritative state for a single game instance.
type Game struct {
	ID      string
	Board   []Cell
	Players map[string]*Player

	Phase       Phase
	CurrentTeam Team

	// GuessesRemaining is meaningful only during PhaseTeamGuess.
	GuessesRemaining int

	Clues ClueLedger

	// Turn counts clue-then-guess cycles, starting at 1.
	Turn int

	// Winner stays empty until the game is terminal.
	Winner    Team
	WinReason WinReason

	// Version increments once per applied command, for stale-state checks.
	Version int64
}

// Over reports whether the game has reached its terminal state.
func (g *Game) Over() bool {
	return g.Phase == PhaseGameOver
}
