package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"codewords/internal/config"
	"codewords/internal/domain"
	"codewords/internal/words"

	"github.com/google/uuid"
)

// Service contains Codewords use-cases operating on domain state. Commands
// are applied all-or-nothing: a rejected command leaves the game unchanged.
type Service struct {
	rng *rand.Rand
	cfg config.GameConfig
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, cfg: config.GetGameConfig()}
}

var (
	ErrNotYourTurn     = errors.New("not your team's turn")
	ErrWrongRole       = errors.New("role cannot perform this action")
	ErrInvalidClue     = errors.New("invalid clue")
	ErrInvalidGuess    = errors.New("invalid guess")
	ErrGameAlreadyOver = errors.New("game already over")
	ErrStaleState      = errors.New("command targets a stale state version")
	ErrNotInWaiting    = errors.New("game not in waiting phase")
	ErrTeamsNotReady   = errors.New("both teams need a spymaster and at least one operative")
	ErrUnknownPlayer   = errors.New("player not found")
	ErrSpymasterTaken  = errors.New("team already has a spymaster")
)

// CheckVersion rejects commands that target a state version that has since
// advanced. version 0 skips the check (clients that don't track versions).
func CheckVersion(g *domain.Game, version int64) error {
	if version != 0 && version != g.Version {
		return ErrStaleState
	}
	return nil
}

// NewGame creates a game in the waiting phase with a freshly shuffled board.
// The starting team is chosen at random and receives the larger allotment.
func (s *Service) NewGame(id string) (*domain.Game, error) {
	if id == "" {
		id = uuid.NewString()
	}

	layout := s.cfg.Layout()
	drawn, err := words.Draw(s.rng, layout.Size())
	if err != nil {
		return nil, err
	}

	first := domain.TeamRed
	if s.rng.Intn(2) == 1 {
		first = domain.TeamBlue
	}

	board, err := domain.NewBoard(s.rng, drawn, first, layout)
	if err != nil {
		return nil, err
	}

	return &domain.Game{
		ID:          id,
		Board:       board,
		Players:     make(map[string]*domain.Player),
		Phase:       domain.PhaseWaiting,
		CurrentTeam: first,
	}, nil
}

// Join adds a player to the game, or updates the team/role of an existing
// player. Team and role changes are only legal while the game is waiting;
// new players may still join a running game as operatives.
func (s *Service) Join(g *domain.Game, userID string, team domain.Team, role domain.Role) ([]Event, error) {
	if g.Over() {
		return nil, ErrGameAlreadyOver
	}
	if role == "" {
		role = domain.RoleOperative
	}
	if team == "" {
		team = smallerTeam(g)
	}
	if !team.Valid() {
		return nil, fmt.Errorf("unknown team %q", team)
	}

	existing, ok := g.Players[userID]
	if ok && (existing.Team != team || existing.Role != role) && g.Phase != domain.PhaseWaiting {
		return nil, ErrNotInWaiting
	}
	if g.Phase != domain.PhaseWaiting && role == domain.RoleSpymaster && domain.SpymasterOf(g, team) == nil {
		// A running game never re-seats a spymaster; the key was dealt.
		return nil, ErrWrongRole
	}
	if role == domain.RoleSpymaster {
		if master := domain.SpymasterOf(g, team); master != nil && master.UserID != userID {
			return nil, ErrSpymasterTaken
		}
	}

	if ok {
		existing.Team = team
		existing.Role = role
	} else {
		g.Players[userID] = &domain.Player{UserID: userID, Team: team, Role: role}
	}
	g.Version++

	return []Event{{
		Kind:    EventPlayerJoined,
		Payload: PlayerJoinedPayload{UserID: userID, Team: team, Role: role},
	}}, nil
}

// Leave removes a player from the game. Whole-team disconnects are the
// caller's concern; it decides whether to forfeit.
func (s *Service) Leave(g *domain.Game, userID string) ([]Event, error) {
	if _, ok := g.Players[userID]; !ok {
		return nil, ErrUnknownPlayer
	}
	delete(g.Players, userID)
	g.Version++

	return []Event{{
		Kind:    EventPlayerLeft,
		Payload: PlayerLeftPayload{UserID: userID},
	}}, nil
}

// StartGame moves a waiting game into the first spymaster_clue phase once
// both teams have a spymaster and at least one operative. The board key is
// dealt privately to the two spymasters.
func (s *Service) StartGame(g *domain.Game) ([]Event, error) {
	if g.Over() {
		return nil, ErrGameAlreadyOver
	}
	if g.Phase != domain.PhaseWaiting {
		return nil, ErrNotInWaiting
	}
	if !domain.TeamsReady(g) {
		return nil, ErrTeamsNotReady
	}

	g.Phase = domain.PhaseSpymasterClue
	g.Turn = 1
	g.Version++

	boardWords := make([]string, len(g.Board))
	for i, c := range g.Board {
		boardWords[i] = c.Word
	}

	events := []Event{{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Phase:       g.Phase,
			CurrentTeam: g.CurrentTeam,
			Turn:        g.Turn,
			Words:       boardWords,
		},
	}}

	for _, team := range []domain.Team{domain.TeamRed, domain.TeamBlue} {
		master := domain.SpymasterOf(g, team)
		events = append(events, Event{
			Kind:       EventKeyDealt,
			Payload:    KeyDealtPayload{UserID: master.UserID, Cells: spymasterCells(g)},
			Recipients: []string{master.UserID},
		})
	}

	return events, nil
}

// GiveClue processes a clue submission from the current team's spymaster and
// opens the guess window.
func (s *Service) GiveClue(g *domain.Game, spymasterID, word string, number int) ([]Event, error) {
	return s.applyClue(g, spymasterID, word, number, uuid.NewString(), time.Now().UTC())
}

// applyClue is the deterministic core of GiveClue; replay supplies the
// recorded clue ID and timestamp.
func (s *Service) applyClue(g *domain.Game, spymasterID, word string, number int, clueID string, at time.Time) ([]Event, error) {
	if g.Over() {
		return nil, ErrGameAlreadyOver
	}
	pl, ok := g.Players[spymasterID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if g.Phase != domain.PhaseSpymasterClue || pl.Team != g.CurrentTeam {
		return nil, ErrNotYourTurn
	}
	if pl.Role != domain.RoleSpymaster {
		return nil, ErrWrongRole
	}
	if number < 0 {
		return nil, fmt.Errorf("%w: clue number must be non-negative", ErrInvalidClue)
	}
	if domain.ClueWordLeaks(g.Board, word) {
		return nil, fmt.Errorf("%w: clue word matches an unrevealed board word", ErrInvalidClue)
	}

	clue := domain.Clue{
		ID:          clueID,
		Team:        pl.Team,
		SpymasterID: spymasterID,
		Word:        word,
		Number:      number,
		Turn:        g.Turn,
		CreatedAt:   at,
	}
	if err := g.Clues.Append(clue); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClue, err)
	}

	g.Phase = domain.PhaseTeamGuess
	g.GuessesRemaining = number + s.cfg.BonusGuesses
	g.Version++

	return []Event{{
		Kind: EventClueGiven,
		Payload: ClueGivenPayload{
			Clue:             clue,
			Phase:            g.Phase,
			CurrentTeam:      g.CurrentTeam,
			GuessesRemaining: g.GuessesRemaining,
		},
	}}, nil
}

// SubmitGuess reveals a cell for the current team and applies the outcome:
// a win/loss verdict, a forfeited turn, or a decremented guess window.
func (s *Service) SubmitGuess(g *domain.Game, userID string, cellIndex int) ([]Event, error) {
	if g.Over() {
		return nil, ErrGameAlreadyOver
	}
	pl, ok := g.Players[userID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if g.Phase != domain.PhaseTeamGuess {
		return nil, fmt.Errorf("%w: no guess window open", ErrInvalidGuess)
	}
	if pl.Team != g.CurrentTeam {
		return nil, ErrNotYourTurn
	}
	if pl.Role == domain.RoleSpymaster {
		return nil, ErrWrongRole
	}
	if cellIndex < 0 || cellIndex >= len(g.Board) {
		return nil, fmt.Errorf("%w: cell index %d out of range", ErrInvalidGuess, cellIndex)
	}
	if g.Board[cellIndex].Revealed {
		return nil, fmt.Errorf("%w: cell already revealed", ErrInvalidGuess)
	}

	g.Board[cellIndex].Revealed = true
	cell := g.Board[cellIndex]
	team := g.CurrentTeam
	outcome := domain.ClassifyReveal(team, cell.Owner)

	revealed := CellRevealedPayload{
		CellIndex: cellIndex,
		Word:      cell.Word,
		Owner:     cell.Owner,
		Outcome:   outcome,
		ByUserID:  userID,
		Team:      team,
	}

	if verdict := domain.EvaluateWin(g.Board, team, cell); verdict.Over {
		s.finish(g, verdict.Winner, verdict.Reason)
		revealed.Phase = g.Phase
		return []Event{
			{Kind: EventCellRevealed, Payload: revealed},
			{Kind: EventGameOver, Payload: GameOverPayload{Winner: g.Winner, Reason: g.WinReason}},
		}, nil
	}

	switch outcome {
	case domain.OutcomeTeamCell:
		g.GuessesRemaining--
		if g.GuessesRemaining > 0 {
			g.Version++
			revealed.GuessesRemaining = g.GuessesRemaining
			revealed.Phase = g.Phase
			return []Event{{Kind: EventCellRevealed, Payload: revealed}}, nil
		}
		s.advanceTurn(g)
		revealed.Phase = g.Phase
		return []Event{
			{Kind: EventCellRevealed, Payload: revealed},
			{Kind: EventTurnChanged, Payload: turnChanged(g, TurnCauseGuessesExhausted)},
		}, nil
	default:
		// Neutral or opposing cell: the turn is forfeited immediately.
		s.advanceTurn(g)
		revealed.Phase = g.Phase
		return []Event{
			{Kind: EventCellRevealed, Payload: revealed},
			{Kind: EventTurnChanged, Payload: turnChanged(g, TurnCauseWrongGuess)},
		}, nil
	}
}

// EndTurn closes the guess window voluntarily. userID may be empty for
// externally synthesized end-turns (turn timers), which bypass the
// membership check but follow the same transition.
func (s *Service) EndTurn(g *domain.Game, userID string) ([]Event, error) {
	if g.Over() {
		return nil, ErrGameAlreadyOver
	}
	if g.Phase != domain.PhaseTeamGuess {
		return nil, ErrNotYourTurn
	}
	if userID != "" {
		pl, ok := g.Players[userID]
		if !ok {
			return nil, ErrUnknownPlayer
		}
		if pl.Team != g.CurrentTeam {
			return nil, ErrNotYourTurn
		}
	}

	s.advanceTurn(g)
	return []Event{{Kind: EventTurnChanged, Payload: turnChanged(g, TurnCauseEndedTurn)}}, nil
}

// Forfeit ends the game administratively in favor of the opposing team.
// Legal from any non-terminal state; no per-role validation applies.
func (s *Service) Forfeit(g *domain.Game, team domain.Team) ([]Event, error) {
	if g.Over() {
		return nil, ErrGameAlreadyOver
	}
	s.finish(g, team.Opponent(), domain.WinReasonForfeit)
	return []Event{{Kind: EventGameOver, Payload: GameOverPayload{Winner: g.Winner, Reason: g.WinReason}}}, nil
}

func (s *Service) advanceTurn(g *domain.Game) {
	g.CurrentTeam = g.CurrentTeam.Opponent()
	g.Phase = domain.PhaseSpymasterClue
	g.GuessesRemaining = 0
	g.Turn++
	g.Version++
}

func (s *Service) finish(g *domain.Game, winner domain.Team, reason domain.WinReason) {
	g.Phase = domain.PhaseGameOver
	g.Winner = winner
	g.WinReason = reason
	g.GuessesRemaining = 0
	g.Version++
}

func turnChanged(g *domain.Game, cause TurnChangeCause) TurnChangedPayload {
	return TurnChangedPayload{CurrentTeam: g.CurrentTeam, Phase: g.Phase, Turn: g.Turn, Cause: cause}
}

// smallerTeam returns the team with fewer members, red on ties.
func smallerTeam(g *domain.Game) domain.Team {
	if len(domain.TeamMembers(g, domain.TeamBlue)) < len(domain.TeamMembers(g, domain.TeamRed)) {
		return domain.TeamBlue
	}
	return domain.TeamRed
}
