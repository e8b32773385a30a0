package app

import "codewords/internal/domain"

// EventKind identifies emitted game events for Nakama dispatch.
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventGameStarted  EventKind = "game_started"
	// EventKeyDealt carries the full board key, sent privately to spymasters.
	EventKeyDealt     EventKind = "key_dealt"
	EventClueGiven    EventKind = "clue_given"
	EventCellRevealed EventKind = "cell_revealed"
	EventTurnChanged  EventKind = "turn_changed"
	EventGameOver     EventKind = "game_over"
)

// Event is a game event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

// TurnChangeCause explains why the guess window closed.
type TurnChangeCause string

const (
	TurnCauseWrongGuess       TurnChangeCause = "wrong_guess"
	TurnCauseGuessesExhausted TurnChangeCause = "guesses_exhausted"
	TurnCauseEndedTurn        TurnChangeCause = "ended_turn"
)

type PlayerJoinedPayload struct {
	UserID string      `json:"user_id"`
	Team   domain.Team `json:"team"`
	Role   domain.Role `json:"role"`
}

type PlayerLeftPayload struct {
	UserID string `json:"user_id"`
}

type GameStartedPayload struct {
	Phase       domain.Phase `json:"phase"`
	CurrentTeam domain.Team  `json:"current_team"`
	Turn        int          `json:"turn"`
	Words       []string     `json:"words"`
}

type KeyDealtPayload struct {
	UserID string     `json:"user_id"`
	Cells  []CellView `json:"cells"`
}

type ClueGivenPayload struct {
	Clue             domain.Clue  `json:"clue"`
	Phase            domain.Phase `json:"phase"`
	CurrentTeam      domain.Team  `json:"current_team"`
	GuessesRemaining int          `json:"guesses_remaining"`
}

type CellRevealedPayload struct {
	CellIndex int                  `json:"cell_index"`
	Word      string               `json:"word"`
	Owner     domain.CellOwner     `json:"owner"`
	Outcome   domain.RevealOutcome `json:"outcome"`
	ByUserID  string               `json:"by_user_id"`
	Team      domain.Team          `json:"team"`
	// GuessesRemaining reflects the window after this reveal; zero when the
	// reveal closed it.
	GuessesRemaining int          `json:"guesses_remaining"`
	Phase            domain.Phase `json:"phase"`
}

type TurnChangedPayload struct {
	CurrentTeam domain.Team     `json:"current_team"`
	Phase       domain.Phase    `json:"phase"`
	Turn        int             `json:"turn"`
	Cause       TurnChangeCause `json:"cause"`
}

type GameOverPayload struct {
	Winner domain.Team      `json:"winner"`
	Reason domain.WinReason `json:"reason"`
}
