package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"codewords/internal/app"
	"codewords/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// rpcVoiceToken handles the RPC call from the client to generate a voice
// channel token. Operatives use per-team channels so opposing teams never
// share a room.
// Payload: {"action": "login" | "join", "match_id": "...", "team": "red" | "blue"}
func rpcVoiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("No user ID in context", 16) // UNAUTHENTICATED
	}

	var req struct {
		Action  string      `json:"action"`
		MatchID string      `json:"match_id"`
		Team    domain.Team `json:"team"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	issuer := env["voice_issuer"]
	secret := env["voice_secret"]
	voiceDomain := env["voice_domain"]

	if issuer == "" || secret == "" || voiceDomain == "" {
		issuer = "test-issuer"
		secret = "test-secret"
		voiceDomain = "test.voice.example.com"
		logger.Warn("Voice credentials missing from env, using test defaults.")
	}

	svc := app.NewVoiceService(secret, issuer, voiceDomain)
	token, err := svc.GenerateToken(userID, req.Action, req.MatchID, req.Team)
	if err != nil {
		logger.Error("Failed to generate voice token: %v", err)
		return "", runtime.NewError("Invalid voice token request", 3)
	}

	res := map[string]string{
		"token": token,
	}
	resBytes, _ := json.Marshal(res)
	return string(resBytes), nil
}
