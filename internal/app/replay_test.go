package app

import (
	"math/rand"
	"reflect"
	"testing"

	"codewords/internal/domain"
)

func TestReplayReconstructsState(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(11)))
	g, err := svc.NewGame("replay-1")
	if err != nil {
		t.Fatalf("new game error: %v", err)
	}
	snap := TakeSnapshot(g)

	var log []Command
	apply := func(cmd Command) {
		t.Helper()
		var err error
		switch cmd.Kind {
		case CmdJoin:
			_, err = svc.Join(g, cmd.UserID, cmd.Team, cmd.Role)
		case CmdStartGame:
			_, err = svc.StartGame(g)
		case CmdGiveClue:
			var events []Event
			events, err = svc.GiveClue(g, cmd.UserID, cmd.Word, cmd.Number)
			if err == nil {
				clue := events[0].Payload.(ClueGivenPayload).Clue
				cmd.ClueID = clue.ID
				cmd.At = clue.CreatedAt
			}
		case CmdSubmitGuess:
			_, err = svc.SubmitGuess(g, cmd.UserID, cmd.CellIndex)
		case CmdEndTurn:
			_, err = svc.EndTurn(g, cmd.UserID)
		}
		if err != nil {
			t.Fatalf("apply %s error: %v", cmd.Kind, err)
		}
		log = append(log, cmd)
	}

	first := g.CurrentTeam
	second := first.Opponent()
	apply(Command{Kind: CmdJoin, UserID: "a1", Team: first, Role: domain.RoleSpymaster})
	apply(Command{Kind: CmdJoin, UserID: "a2", Team: first, Role: domain.RoleOperative})
	apply(Command{Kind: CmdJoin, UserID: "b1", Team: second, Role: domain.RoleSpymaster})
	apply(Command{Kind: CmdJoin, UserID: "b2", Team: second, Role: domain.RoleOperative})
	apply(Command{Kind: CmdStartGame})
	apply(Command{Kind: CmdGiveClue, UserID: "a1", Word: "xyzzy", Number: 1})
	apply(Command{Kind: CmdSubmitGuess, UserID: "a2", CellIndex: 3})

	if g.Phase == domain.PhaseTeamGuess {
		apply(Command{Kind: CmdEndTurn, UserID: "a2"})
	}

	rebuilt, err := svc.Replay(snap, log)
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}

	if !reflect.DeepEqual(rebuilt.Board, g.Board) {
		t.Fatalf("replayed board diverges")
	}
	if rebuilt.Phase != g.Phase || rebuilt.CurrentTeam != g.CurrentTeam || rebuilt.Turn != g.Turn {
		t.Fatalf("replayed turn state diverges: %s/%s/%d vs %s/%s/%d",
			rebuilt.Phase, rebuilt.CurrentTeam, rebuilt.Turn, g.Phase, g.CurrentTeam, g.Turn)
	}
	if rebuilt.GuessesRemaining != g.GuessesRemaining || rebuilt.Version != g.Version {
		t.Fatalf("replayed counters diverge")
	}
	if !reflect.DeepEqual(rebuilt.Clues.History(), g.Clues.History()) {
		t.Fatalf("replayed clue ledger diverges")
	}
	if !reflect.DeepEqual(rebuilt.Players, g.Players) {
		t.Fatalf("replayed players diverge")
	}
}

func TestReplayRejectsCorruptLog(t *testing.T) {
	svc := newTestService()
	g, err := svc.NewGame("replay-2")
	if err != nil {
		t.Fatalf("new game error: %v", err)
	}
	snap := TakeSnapshot(g)

	// A guess before any players joined can never have been accepted.
	if _, err := svc.Replay(snap, []Command{{Kind: CmdSubmitGuess, UserID: "ghost", CellIndex: 0}}); err == nil {
		t.Fatalf("expected replay error for impossible log")
	}
}
