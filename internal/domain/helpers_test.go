package domain

import "testing"

func gameWithPlayers(players ...*Player) *Game {
	g := &Game{Players: map[string]*Player{}}
	for _, p := range players {
		g.Players[p.UserID] = p
	}
	return g
}

func TestTeamsReady(t *testing.T) {
	tests := []struct {
		name    string
		players []*Player
		want    bool
	}{
		{
			name: "full composition",
			players: []*Player{
				{UserID: "r1", Team: TeamRed, Role: RoleSpymaster},
				{UserID: "r2", Team: TeamRed, Role: RoleOperative},
				{UserID: "b1", Team: TeamBlue, Role: RoleSpymaster},
				{UserID: "b2", Team: TeamBlue, Role: RoleOperative},
			},
			want: true,
		},
		{
			name: "missing blue spymaster",
			players: []*Player{
				{UserID: "r1", Team: TeamRed, Role: RoleSpymaster},
				{UserID: "r2", Team: TeamRed, Role: RoleOperative},
				{UserID: "b2", Team: TeamBlue, Role: RoleOperative},
			},
			want: false,
		},
		{
			name: "spymaster without operatives",
			players: []*Player{
				{UserID: "r1", Team: TeamRed, Role: RoleSpymaster},
				{UserID: "b1", Team: TeamBlue, Role: RoleSpymaster},
				{UserID: "b2", Team: TeamBlue, Role: RoleOperative},
			},
			want: false,
		},
		{name: "empty game", players: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TeamsReady(gameWithPlayers(tt.players...)); got != tt.want {
				t.Fatalf("TeamsReady() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeLabel(t *testing.T) {
	label := ComputeLabel(nil)
	if !label.Open || label.Game != "codewords" || label.Phase != string(PhaseWaiting) {
		t.Fatalf("unexpected label for nil game: %+v", label)
	}

	label = ComputeLabel(&Game{Phase: PhaseTeamGuess})
	if label.Open || label.Phase != string(PhaseTeamGuess) {
		t.Fatalf("unexpected label for running game: %+v", label)
	}
}

func TestOpponent(t *testing.T) {
	if TeamRed.Opponent() != TeamBlue || TeamBlue.Opponent() != TeamRed {
		t.Fatalf("Opponent mapping broken")
	}
}

func TestCellOwnerTeam(t *testing.T) {
	if team, ok := OwnerRed.Team(); !ok || team != TeamRed {
		t.Fatalf("OwnerRed.Team() = %v, %v", team, ok)
	}
	if _, ok := OwnerAssassin.Team(); ok {
		t.Fatalf("assassin should belong to no team")
	}
	if _, ok := OwnerNeutral.Team(); ok {
		t.Fatalf("neutral should belong to no team")
	}
}
