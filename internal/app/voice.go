package app

import (
	"fmt"
	"math/rand"
	"time"

	"codewords/internal/domain"

	"github.com/form3tech-oss/jwt-go"
)

// VoiceService issues access tokens for the per-team conference channels
// operatives use to confer during their guess window.
type VoiceService struct {
	voiceSecret string
	voiceIssuer string
	voiceDomain string
}

const (
	VoiceTokenActionLogin = "login"
	VoiceTokenActionJoin  = "join"
)

func NewVoiceService(secret, issuer, domain string) *VoiceService {
	return &VoiceService{
		voiceSecret: secret,
		voiceIssuer: issuer,
		voiceDomain: domain,
	}
}

// GenerateToken signs a token for the given action. Join tokens are scoped
// to one match's team channel, so opposing operatives can never listen in.
func (s *VoiceService) GenerateToken(user, action, matchID string, team domain.Team) (string, error) {
	if s == nil {
		return "", fmt.Errorf("voice service is nil")
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}
	if s.voiceSecret == "" || s.voiceIssuer == "" || s.voiceDomain == "" {
		return "", fmt.Errorf("voice config is incomplete")
	}

	userURI := s.userURI(user)
	targetURI, err := s.targetURI(action, matchID, team, userURI)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"iss": s.voiceIssuer,
		"sub": user,
		"exp": time.Now().Add(time.Hour * 1).Unix(),
		"vxa": action,
		"vxi": fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
		"f":   userURI,
		"t":   targetURI,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.voiceSecret))
}

func (s *VoiceService) userURI(user string) string {
	return "sip:." + s.voiceIssuer + "." + user + ".@" + s.voiceDomain
}

// TeamChannelName scopes the conference channel to one team in one match.
func TeamChannelName(matchID string, team domain.Team) string {
	return fmt.Sprintf("codewords-%s-%s", matchID, team)
}

func (s *VoiceService) channelURI(matchID string, team domain.Team) string {
	return "sip:confctl-g-" + TeamChannelName(matchID, team) + "@" + s.voiceDomain
}

func (s *VoiceService) targetURI(action, matchID string, team domain.Team, userURI string) (string, error) {
	switch action {
	case VoiceTokenActionLogin:
		return userURI, nil
	case VoiceTokenActionJoin:
		if matchID == "" {
			return "", fmt.Errorf("match id is required for join tokens")
		}
		if !team.Valid() {
			return "", fmt.Errorf("team is required for join tokens")
		}
		return s.channelURI(matchID, team), nil
	default:
		return "", fmt.Errorf("unsupported voice action: %s", action)
	}
}
