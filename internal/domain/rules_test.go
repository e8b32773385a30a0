package domain

import "testing"

func TestClueWordLeaks(t *testing.T) {
	board := []Cell{
		{Word: "Hund", Owner: OwnerRed},
		{Word: "Katze", Owner: OwnerBlue},
		{Word: "Baum", Owner: OwnerNeutral, Revealed: true},
	}

	tests := []struct {
		name string
		word string
		want bool
	}{
		{name: "exact match", word: "Hund", want: true},
		{name: "case-insensitive match", word: "hund", want: true},
		{name: "board word inside clue", word: "Hundehütte", want: true},
		{name: "clue inside board word", word: "Kat", want: true},
		{name: "revealed word is fair game", word: "Baum", want: false},
		{name: "unrelated word", word: "Tier", want: false},
		{name: "empty clue", word: "", want: true},
		{name: "whitespace clue", word: "   ", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClueWordLeaks(board, tt.word); got != tt.want {
				t.Fatalf("ClueWordLeaks(%q) = %v, want %v", tt.word, got, tt.want)
			}
		})
	}
}

func TestClassifyReveal(t *testing.T) {
	tests := []struct {
		name    string
		guesser Team
		owner   CellOwner
		want    RevealOutcome
	}{
		{name: "own cell", guesser: TeamRed, owner: OwnerRed, want: OutcomeTeamCell},
		{name: "opponent cell", guesser: TeamRed, owner: OwnerBlue, want: OutcomeOpponentCell},
		{name: "neutral", guesser: TeamBlue, owner: OwnerNeutral, want: OutcomeNeutral},
		{name: "assassin", guesser: TeamBlue, owner: OwnerAssassin, want: OutcomeAssassin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyReveal(tt.guesser, tt.owner); got != tt.want {
				t.Fatalf("ClassifyReveal(%s, %s) = %s, want %s", tt.guesser, tt.owner, got, tt.want)
			}
		})
	}
}

func TestEvaluateWinAssassinBeatsCompletion(t *testing.T) {
	// Red's last cell and the assassin cannot fall together under single-cell
	// reveal semantics, but the precedence must hold anyway.
	board := []Cell{
		{Word: "a", Owner: OwnerRed, Revealed: true},
		{Word: "b", Owner: OwnerBlue},
		{Word: "c", Owner: OwnerAssassin, Revealed: true},
	}
	verdict := EvaluateWin(board, TeamRed, board[2])
	if !verdict.Over || verdict.Winner != TeamBlue || verdict.Reason != WinReasonAssassinHit {
		t.Fatalf("verdict = %+v, want assassin loss for red", verdict)
	}
}

func TestEvaluateWinOwnCompletion(t *testing.T) {
	board := []Cell{
		{Word: "a", Owner: OwnerRed, Revealed: true},
		{Word: "b", Owner: OwnerRed, Revealed: true},
		{Word: "c", Owner: OwnerBlue},
		{Word: "d", Owner: OwnerAssassin},
	}
	verdict := EvaluateWin(board, TeamRed, board[1])
	if !verdict.Over || verdict.Winner != TeamRed || verdict.Reason != WinReasonWordsCleared {
		t.Fatalf("verdict = %+v, want words_cleared win for red", verdict)
	}
}

func TestEvaluateWinWrongGuesserCompletesOpponent(t *testing.T) {
	// Red reveals Blue's last cell; Blue's words are cleared and Blue wins.
	board := []Cell{
		{Word: "a", Owner: OwnerRed},
		{Word: "b", Owner: OwnerBlue, Revealed: true},
		{Word: "c", Owner: OwnerAssassin},
	}
	verdict := EvaluateWin(board, TeamRed, board[1])
	if !verdict.Over || verdict.Winner != TeamBlue || verdict.Reason != WinReasonWordsCleared {
		t.Fatalf("verdict = %+v, want words_cleared win for blue", verdict)
	}
}

func TestEvaluateWinNotTerminal(t *testing.T) {
	board := []Cell{
		{Word: "a", Owner: OwnerRed, Revealed: true},
		{Word: "b", Owner: OwnerRed},
		{Word: "c", Owner: OwnerBlue},
		{Word: "d", Owner: OwnerNeutral, Revealed: true},
	}
	if verdict := EvaluateWin(board, TeamRed, board[0]); verdict.Over {
		t.Fatalf("verdict = %+v, want not over", verdict)
	}
}
