package domain

// SpymasterOf returns the spymaster for the given team, or nil if the team
// has none yet.
func SpymasterOf(g *Game, team Team) *Player {
	for _, p := range g.Players {
		if p.Team == team && p.Role == RoleSpymaster {
			return p
		}
	}
	return nil
}

// OperativeCount returns how many operatives the team currently has.
func OperativeCount(g *Game, team Team) int {
	n := 0
	for _, p := range g.Players {
		if p.Team == team && p.Role == RoleOperative {
			n++
		}
	}
	return n
}

// TeamsReady reports whether both teams have exactly one spymaster and at
// least one operative, the minimum composition to start a game.
func TeamsReady(g *Game) bool {
	for _, team := range []Team{TeamRed, TeamBlue} {
		if SpymasterOf(g, team) == nil || OperativeCount(g, team) < 1 {
			return false
		}
	}
	return true
}

// TeamMembers returns the user IDs on the given team.
func TeamMembers(g *Game, team Team) []string {
	var ids []string
	for _, p := range g.Players {
		if p.Team == team {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

// LabelPayload holds the values advertised in the match listing label.
type LabelPayload struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// ComputeLabel derives the advertised label from game state. g may be nil
// when no game has been created for the match yet.
func ComputeLabel(g *Game) LabelPayload {
	phase := PhaseWaiting
	if g != nil {
		phase = g.Phase
	}
	return LabelPayload{Open: phase == PhaseWaiting, Game: "codewords", Phase: string(phase)}
}
