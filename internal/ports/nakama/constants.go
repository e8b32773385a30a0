package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcVoiceToken is the Nakama RPC id clients call to obtain a voice channel token.
	RpcVoiceToken = "voice_token"

	// MatchNameCodewords is the authoritative match handler name registered with Nakama.
	MatchNameCodewords = "codewords_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpJoinTeam    int64 = 1
	OpStartGame   int64 = 2
	OpGiveClue    int64 = 3
	OpSubmitGuess int64 = 4
	OpEndTurn     int64 = 5
	OpForfeit     int64 = 6

	// Server -> Client events
	OpPlayerJoined  int64 = 101
	OpPlayerLeft    int64 = 102
	OpGameStarted   int64 = 103
	OpKeyDealt      int64 = 104 // send privately to spymasters
	OpClueGiven     int64 = 105
	OpCellRevealed  int64 = 106
	OpTurnChanged   int64 = 107
	OpGameOver      int64 = 108
	OpGameError     int64 = 109
	OpStateSnapshot int64 = 110
)
