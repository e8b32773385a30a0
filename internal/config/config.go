package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"codewords/internal/domain"
)

// GameConfig carries the tunable rules for a Codewords match.
type GameConfig struct {
	// Board layout counts; the first team holds the larger share and moves first.
	FirstTeamCells  int `json:"first_team_cells"`
	SecondTeamCells int `json:"second_team_cells"`
	NeutralCells    int `json:"neutral_cells"`
	AssassinCells   int `json:"assassin_cells"`

	// BonusGuesses is added to the clue number when the guess window opens.
	// The classic convention is 1 (the "+1" bonus guess).
	BonusGuesses int `json:"bonus_guesses"`

	TurnDurationSeconds int `json:"turn_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before filling open roles with bots.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`

	// WinReward is the coin amount credited to each member of the winning team.
	WinReward int64 `json:"win_reward"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		applyDefaults(&c)
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults when
// no file was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		var c GameConfig
		applyDefaults(&c)
		return c
	}
	return *cfg
}

func applyDefaults(c *GameConfig) {
	if c.FirstTeamCells == 0 {
		c.FirstTeamCells = 9
	}
	if c.SecondTeamCells == 0 {
		c.SecondTeamCells = 8
	}
	if c.NeutralCells == 0 {
		c.NeutralCells = 7
	}
	if c.AssassinCells == 0 {
		c.AssassinCells = 1
	}
	if c.BonusGuesses == 0 {
		c.BonusGuesses = 1
	}
	if c.TurnDurationSeconds == 0 {
		c.TurnDurationSeconds = 120
	}
	if c.BotAutoFillDelaySeconds == 0 {
		c.BotAutoFillDelaySeconds = 10
	}
	if c.WinReward == 0 {
		c.WinReward = 100
	}
}

// Layout converts the configured counts into a board layout.
func (c GameConfig) Layout() domain.Layout {
	return domain.Layout{
		FirstTeam:  c.FirstTeamCells,
		SecondTeam: c.SecondTeamCells,
		Neutral:    c.NeutralCells,
		Assassin:   c.AssassinCells,
	}
}
