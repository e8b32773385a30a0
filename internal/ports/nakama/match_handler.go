package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"

	"codewords/internal/app"
	"codewords/internal/bot"
	"codewords/internal/config"
	"codewords/internal/domain"
	"codewords/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const maxPresences = 10

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Tick             int64                       `json:"tick"`               // Current tick of the match for timer logic
	Presences        map[string]runtime.Presence `json:"-"`                  // Map UserId -> Presence for targeted messaging
	App              *app.Service                `json:"-"`                  // Codewords app service with game logic
	Game             *domain.Game                `json:"-"`                  // Authoritative game state, never nil after init
	Snapshot         app.Snapshot                `json:"snapshot"`           // Initial board layout of the current game
	Log              []app.Command               `json:"log"`                // Accepted commands since the snapshot
	TurnDeadlineTick int64                       `json:"turn_deadline_tick"` // Tick when the open guess window times out
	WinReward        int64                       `json:"win_reward"`         // Coins paid to each winning team member

	BotsEnabled      bool                  `json:"bots_enabled"`        // Whether AI players are allowed
	BotMinDelay      int                   `json:"bot_min_delay"`       // Min seconds a bot waits before acting
	BotMaxDelay      int                   `json:"bot_max_delay"`       // Max seconds a bot waits before acting
	BotAutoFillDelay int                   `json:"bot_auto_fill_delay"` // Seconds to wait before auto-filling open roles
	BotWaitUntil     int64                 `json:"bot_wait_until"`      // Tick when the acting bot should move
	ShortLobbySince  int64                 `json:"short_lobby_since"`   // Tick when the lobby became ready-blocked
	BotSeq           int                   `json:"bot_seq"`             // Next bot identity index
	Bots             map[string]*bot.Agent `json:"-"`                   // Active bot agents

	Economy ports.EconomyPort `json:"-"` // Interface to Nakama wallet
}

// HumanCount returns the number of connected human players.
func (ms *MatchState) HumanCount() int {
	return len(ms.Presences)
}

// joinTeamRequest is sent by clients to pick or change team and role.
type joinTeamRequest struct {
	Team    domain.Team `json:"team"`
	Role    domain.Role `json:"role"`
	Version int64       `json:"version,omitempty"`
}

type giveClueRequest struct {
	Word    string `json:"word"`
	Number  int    `json:"number"`
	Version int64  `json:"version,omitempty"`
}

type submitGuessRequest struct {
	CellIndex int   `json:"cell_index"`
	Version   int64 `json:"version,omitempty"`
}

type endTurnRequest struct {
	Version int64 `json:"version,omitempty"`
}

// gameErrorPayload is sent privately to the offending client.
type gameErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	// Load bot identities from data folder
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}

	// Load game configuration
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}
	cfg := config.GetGameConfig()

	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(nil),
		Bots:      make(map[string]*bot.Agent),
		Economy:   NewNakamaEconomyAdapter(nk),
		WinReward: cfg.WinReward,
	}

	game, err := state.App.NewGame("")
	if err != nil {
		logger.Error("MatchInit: Failed to create game: %v", err)
		return nil, 0, ""
	}
	state.Game = game
	state.Snapshot = app.TakeSnapshot(game)

	// Read environment variables for bot configuration
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if val, ok := env["codewords_bots_enabled"]; ok {
			state.BotsEnabled = val == "true"
		}
		if val, ok := env["codewords_bot_min_delay_sec"]; ok {
			if i, err := strconv.Atoi(val); err == nil {
				state.BotMinDelay = i
			}
		}
		if val, ok := env["codewords_bot_max_delay_sec"]; ok {
			if i, err := strconv.Atoi(val); err == nil {
				state.BotMaxDelay = i
			}
		}
		if val, ok := env["codewords_bot_auto_fill_delay_sec"]; ok {
			if i, err := strconv.Atoi(val); err == nil {
				state.BotAutoFillDelay = i
			}
		}
	}

	// Defaults if not set
	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}
	if state.BotAutoFillDelay == 0 {
		state.BotAutoFillDelay = cfg.BotAutoFillDelaySeconds
	}

	labelBytes, err := json.Marshal(domain.ComputeLabel(state.Game))
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // turn timers are whole seconds
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if _, rejoining := matchState.Presences[presence.GetUserId()]; !rejoining && matchState.HumanCount() >= maxPresences {
		return state, false, "Match full"
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if _, known := matchState.Game.Players[userID]; known {
			// Reconnect, roster unchanged.
			mh.sendSnapshot(matchState, dispatcher, logger, userID)
			continue
		}

		// Default placement keeps the teams balanced; the client can change
		// team and role with OpJoinTeam while the game is waiting.
		events, err := matchState.App.Join(matchState.Game, userID, "", "")
		if err != nil {
			logger.Warn("MatchJoin: Could not seat %s: %v", userID, err)
			mh.sendSnapshot(matchState, dispatcher, logger, userID)
			continue
		}
		player := matchState.Game.Players[userID]
		matchState.Log = append(matchState.Log, app.Command{
			Kind: app.CmdJoin, UserID: userID, Team: player.Team, Role: player.Role,
		})
		mh.broadcastEvents(ctx, matchState, dispatcher, logger, events)
		mh.sendSnapshot(matchState, dispatcher, logger, userID)
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		g := matchState.Game
		player, seated := g.Players[userID]
		if !seated {
			continue
		}
		team := player.Team

		if events, err := matchState.App.Leave(g, userID); err == nil {
			matchState.Log = append(matchState.Log, app.Command{Kind: app.CmdLeave, UserID: userID})
			mh.broadcastEvents(ctx, matchState, dispatcher, logger, events)
		}

		// A running game cannot continue for a team with nobody left on it.
		if !g.Over() && g.Phase != domain.PhaseWaiting && len(domain.TeamMembers(g, team)) == 0 {
			logger.Info("MatchLeave: Team %s emptied, forfeiting.", team)
			events, err := matchState.App.Forfeit(g, team)
			if err != nil {
				logger.Error("MatchLeave: Forfeit failed: %v", err)
				continue
			}
			matchState.Log = append(matchState.Log, app.Command{Kind: app.CmdForfeit, Team: team})
			mh.broadcastEvents(ctx, matchState, dispatcher, logger, events)
			mh.settleAndReset(ctx, matchState, dispatcher, logger)
		}
	}

	if matchState.HumanCount() == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// Handle incoming messages
	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpJoinTeam:
			mh.handleJoinTeam(ctx, matchState, dispatcher, logger, msg)
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpGiveClue:
			mh.handleGiveClue(ctx, matchState, dispatcher, logger, msg)
		case OpSubmitGuess:
			mh.handleSubmitGuess(ctx, matchState, dispatcher, logger, msg)
		case OpEndTurn:
			mh.handleEndTurn(ctx, matchState, dispatcher, logger, msg)
		case OpForfeit:
			mh.handleForfeit(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.enforceTurnDeadline(ctx, matchState, dispatcher, logger)

	// AI Logic
	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) handleJoinTeam(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var req joinTeamRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleJoinTeam: Invalid payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	if err := app.CheckVersion(state.Game, req.Version); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}

	events, err := state.App.Join(state.Game, senderID, req.Team, req.Role)
	if err != nil {
		logger.Warn("handleJoinTeam: User %s rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	state.Log = append(state.Log, app.Command{
		Kind: app.CmdJoin, UserID: senderID, Team: state.Game.Players[senderID].Team, Role: state.Game.Players[senderID].Role,
	})
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	if _, seated := state.Game.Players[senderID]; !seated {
		mh.sendError(state, dispatcher, logger, senderID, app.ErrUnknownPlayer)
		return
	}
	if len(state.Game.Players) < app.MinPlayersToStartGame {
		logger.Warn("StartGame: Cannot start with %d players. Need at least %d.", len(state.Game.Players), app.MinPlayersToStartGame)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrTeamsNotReady)
		return
	}

	events, err := state.App.StartGame(state.Game)
	if err != nil {
		logger.Warn("StartGame: Request from %s rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	state.Log = append(state.Log, app.Command{Kind: app.CmdStartGame})

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)

	logger.Info("StartGame: Game started with %d players, %s picks first.", len(state.Game.Players), state.Game.CurrentTeam)
}

func (mh *matchHandler) handleGiveClue(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var req giveClueRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleGiveClue: Invalid payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	if err := app.CheckVersion(state.Game, req.Version); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}

	events, err := state.App.GiveClue(state.Game, senderID, req.Word, req.Number)
	if err != nil {
		logger.Warn("handleGiveClue: User %s rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.recordClue(state, senderID, req.Word, req.Number)
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleSubmitGuess(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var req submitGuessRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleSubmitGuess: Invalid payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	if err := app.CheckVersion(state.Game, req.Version); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}

	events, err := state.App.SubmitGuess(state.Game, senderID, req.CellIndex)
	if err != nil {
		logger.Warn("handleSubmitGuess: User %s rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	state.Log = append(state.Log, app.Command{Kind: app.CmdSubmitGuess, UserID: senderID, CellIndex: req.CellIndex})
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	mh.settleAndReset(ctx, state, dispatcher, logger)
}

func (mh *matchHandler) handleEndTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var req endTurnRequest
	if len(msg.GetData()) > 0 {
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			logger.Warn("handleEndTurn: Invalid payload from %s: %v", senderID, err)
			mh.sendError(state, dispatcher, logger, senderID, err)
			return
		}
	}
	if err := app.CheckVersion(state.Game, req.Version); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}

	events, err := state.App.EndTurn(state.Game, senderID)
	if err != nil {
		logger.Warn("handleEndTurn: User %s rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	state.Log = append(state.Log, app.Command{Kind: app.CmdEndTurn, UserID: senderID})
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleForfeit(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	player, seated := state.Game.Players[senderID]
	if !seated {
		mh.sendError(state, dispatcher, logger, senderID, app.ErrUnknownPlayer)
		return
	}

	events, err := state.App.Forfeit(state.Game, player.Team)
	if err != nil {
		logger.Warn("handleForfeit: User %s rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	state.Log = append(state.Log, app.Command{Kind: app.CmdForfeit, Team: player.Team})
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	mh.settleAndReset(ctx, state, dispatcher, logger)
}

// recordClue appends a clue command carrying the minted clue ID and timestamp
// so replay reproduces the ledger exactly.
func (mh *matchHandler) recordClue(state *MatchState, senderID, word string, number int) {
	cmd := app.Command{Kind: app.CmdGiveClue, UserID: senderID, Word: word, Number: number}
	if clue, ok := state.Game.Clues.Latest(); ok {
		cmd.ClueID = clue.ID
		cmd.At = clue.CreatedAt
	}
	state.Log = append(state.Log, cmd)
}

// enforceTurnDeadline closes a guess window that has been open too long.
func (mh *matchHandler) enforceTurnDeadline(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	g := state.Game
	if g == nil || g.Phase != domain.PhaseTeamGuess {
		state.TurnDeadlineTick = 0
		return
	}
	if state.TurnDeadlineTick == 0 {
		state.TurnDeadlineTick = state.Tick + int64(config.GetGameConfig().TurnDurationSeconds)
		return
	}
	if state.Tick < state.TurnDeadlineTick {
		return
	}

	logger.Info("MatchLoop: Guess window for %s timed out.", g.CurrentTeam)
	events, err := state.App.EndTurn(g, "")
	if err != nil {
		logger.Error("MatchLoop: Timeout end turn failed: %v", err)
		state.TurnDeadlineTick = 0
		return
	}
	state.Log = append(state.Log, app.Command{Kind: app.CmdEndTurn})
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	g := state.Game

	// 1. Auto-fill missing roles with bots if humans are waiting on a lobby
	// that cannot start.
	if g.Phase == domain.PhaseWaiting {
		if state.HumanCount() >= 1 && !domain.TeamsReady(g) {
			if state.ShortLobbySince == 0 {
				state.ShortLobbySince = state.Tick
				logger.Debug("processBots: Lobby short on players, starting auto-fill timer.")
			}

			if state.Tick-state.ShortLobbySince >= int64(state.BotAutoFillDelay) {
				mh.fillWithBots(ctx, state, dispatcher, logger)
				state.ShortLobbySince = 0
			}
		} else {
			state.ShortLobbySince = 0
		}
		return
	}

	// 2. Handle bot turns in-game
	actorID := mh.pendingBotActor(g)
	if actorID == "" {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", actorID, state.BotWaitUntil, state.Tick)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[actorID]
	if !exists {
		var err error
		agent, err = bot.NewAgent(actorID)
		if err != nil {
			logger.Error("processBots: Failed to create fallback agent: %v", err)
			return
		}
		state.Bots[actorID] = agent
	}

	move, err := agent.Play(g)
	if err != nil {
		logger.Error("processBots: Bot %s failed to calculate move: %v", actorID, err)
		return
	}

	switch {
	case move.GiveClue:
		events, err := state.App.GiveClue(g, actorID, move.Word, move.Number)
		if err != nil {
			logger.Error("processBots: Bot clue rejected: %v", err)
			return
		}
		mh.recordClue(state, actorID, move.Word, move.Number)
		mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	case move.Guess:
		events, err := state.App.SubmitGuess(g, actorID, move.CellIndex)
		if err != nil {
			logger.Error("processBots: Bot guess rejected: %v", err)
			return
		}
		state.Log = append(state.Log, app.Command{Kind: app.CmdSubmitGuess, UserID: actorID, CellIndex: move.CellIndex})
		mh.broadcastEvents(ctx, state, dispatcher, logger, events)
		mh.settleAndReset(ctx, state, dispatcher, logger)
	case move.EndTurn:
		events, err := state.App.EndTurn(g, actorID)
		if err != nil {
			logger.Error("processBots: Bot end turn rejected: %v", err)
			return
		}
		state.Log = append(state.Log, app.Command{Kind: app.CmdEndTurn, UserID: actorID})
		mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	}
}

// pendingBotActor returns the bot that should act now, or empty string.
func (mh *matchHandler) pendingBotActor(g *domain.Game) string {
	switch g.Phase {
	case domain.PhaseSpymasterClue:
		if master := domain.SpymasterOf(g, g.CurrentTeam); master != nil && bot.IsBot(master.UserID) {
			return master.UserID
		}
	case domain.PhaseTeamGuess:
		// A bot only guesses when no human operative shares the team.
		var botID string
		for _, p := range g.Players {
			if p.Team != g.CurrentTeam || p.Role != domain.RoleOperative {
				continue
			}
			if !bot.IsBot(p.UserID) {
				return ""
			}
			botID = p.UserID
		}
		return botID
	}
	return ""
}

// fillWithBots seats bots into whichever roles block the lobby from starting.
func (mh *matchHandler) fillWithBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	g := state.Game
	added := false
	for _, team := range []domain.Team{domain.TeamRed, domain.TeamBlue} {
		if domain.SpymasterOf(g, team) == nil {
			added = mh.addBot(ctx, state, dispatcher, logger, team, domain.RoleSpymaster) || added
		}
		if domain.OperativeCount(g, team) == 0 {
			added = mh.addBot(ctx, state, dispatcher, logger, team, domain.RoleOperative) || added
		}
	}
	if added {
		mh.updateLabel(state, dispatcher, logger)
	}
}

func (mh *matchHandler) addBot(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, team domain.Team, role domain.Role) bool {
	identity := bot.GetBotIdentity(state.BotSeq)
	state.BotSeq++
	botID := identity.UserID

	agent, err := bot.NewAgent(botID)
	if err != nil {
		logger.Error("addBot: Failed to create bot agent for %s: %v", botID, err)
		return false
	}

	events, err := state.App.Join(state.Game, botID, team, role)
	if err != nil {
		logger.Error("addBot: Failed to seat bot %s: %v", botID, err)
		return false
	}
	state.Bots[botID] = agent
	state.Log = append(state.Log, app.Command{Kind: app.CmdJoin, UserID: botID, Team: team, Role: role})
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)

	logger.Info("addBot: Added bot %s (%s) as %s %s", identity.DisplayName, botID, team, role)
	return true
}

// settleAndReset pays out the win reward and rolls a fresh lobby once the
// current game has ended. The roster carries over so the group can rematch.
func (mh *matchHandler) settleAndReset(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	g := state.Game
	if g == nil || !g.Over() {
		return
	}

	if state.Economy != nil && state.WinReward > 0 {
		var updates []ports.WalletUpdate
		for _, userID := range domain.TeamMembers(g, g.Winner) {
			if bot.IsBot(userID) {
				continue
			}
			updates = append(updates, ports.WalletUpdate{
				UserID: userID,
				Amount: state.WinReward,
				Metadata: map[string]interface{}{
					"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
					"reason":   "game_win",
				},
			})
		}
		if len(updates) > 0 {
			if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
				logger.Error("settleAndReset: Failed to update balances: %v", err)
			}
		}
	}

	next, err := state.App.NewGame("")
	if err != nil {
		logger.Error("settleAndReset: Failed to create next game: %v", err)
		return
	}

	// Re-seat everyone who is still here with the team and role they had.
	for _, p := range g.Players {
		_, connected := state.Presences[p.UserID]
		if !connected && !bot.IsBot(p.UserID) {
			continue
		}
		if _, err := state.App.Join(next, p.UserID, p.Team, p.Role); err != nil {
			logger.Warn("settleAndReset: Could not re-seat %s: %v", p.UserID, err)
			continue
		}
	}

	state.Game = next
	state.Snapshot = app.TakeSnapshot(next)
	state.Log = nil
	for _, p := range next.Players {
		state.Log = append(state.Log, app.Command{Kind: app.CmdJoin, UserID: p.UserID, Team: p.Team, Role: p.Role})
	}
	state.TurnDeadlineTick = 0
	state.BotWaitUntil = 0

	mh.updateLabel(state, dispatcher, logger)
	for userID := range state.Presences {
		mh.sendSnapshot(state, dispatcher, logger, userID)
	}
}

// broadcastEvents dispatches app events to Nakama, converting each to its
// opcode and honoring targeted recipients.
func (mh *matchHandler) broadcastEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	switch ev.Kind {
	case app.EventPlayerJoined:
		opCode = OpPlayerJoined
	case app.EventPlayerLeft:
		opCode = OpPlayerLeft
	case app.EventGameStarted:
		opCode = OpGameStarted
	case app.EventKeyDealt:
		opCode = OpKeyDealt
	case app.EventClueGiven:
		opCode = OpClueGiven
	case app.EventCellRevealed:
		opCode = OpCellRevealed
	case app.EventTurnChanged:
		opCode = OpTurnChanged
		state.TurnDeadlineTick = 0
	case app.EventGameOver:
		opCode = OpGameOver
		state.TurnDeadlineTick = 0
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. they are
		// bots), we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// sendSnapshot sends a role-appropriate view of the game to one user.
func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}

	view := app.ViewFor(state.Game, userID)
	bytes, err := json.Marshal(view)
	if err != nil {
		logger.Error("Failed to marshal state snapshot: %v", err)
		return
	}

	dispatcher.BroadcastMessage(OpStateSnapshot, bytes, []runtime.Presence{presence}, nil, true)
}

// sendError sends a gameErrorPayload to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, cause error) {
	payload := gameErrorPayload{
		Code:    errorCode(cause),
		Message: cause.Error(),
	}
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

// errorCode maps app errors onto HTTP-flavored codes the client switches on.
func errorCode(err error) int {
	switch {
	case errors.Is(err, app.ErrStaleState), errors.Is(err, app.ErrGameAlreadyOver):
		return 409
	case errors.Is(err, app.ErrNotYourTurn), errors.Is(err, app.ErrWrongRole), errors.Is(err, app.ErrSpymasterTaken):
		return 403
	case errors.Is(err, app.ErrUnknownPlayer):
		return 404
	default:
		return 400
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(domain.ComputeLabel(state.Game))
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

// MatchSignal supports a "replay" probe that rebuilds the game from the
// snapshot and command log and reports whether it matches the live state.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}

	if data != "replay" {
		return matchState, ""
	}

	rebuilt, err := matchState.App.Replay(matchState.Snapshot, matchState.Log)
	result := map[string]interface{}{"ok": err == nil}
	if err != nil {
		result["error"] = err.Error()
	} else {
		result["version"] = rebuilt.Version
		result["matches_live"] = rebuilt.Version == matchState.Game.Version &&
			rebuilt.Phase == matchState.Game.Phase &&
			domain.RevealedCount(rebuilt.Board) == domain.RevealedCount(matchState.Game.Board)
	}
	bytes, _ := json.Marshal(result)
	return matchState, string(bytes)
}
