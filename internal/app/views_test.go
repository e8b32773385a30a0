package app

import (
	"testing"

	"codewords/internal/domain"
)

func TestOperativeViewHidesUnrevealedOwners(t *testing.T) {
	g := clueGame()
	g.Board[4].Revealed = true

	view := OperativeView(g)
	if len(view.Cells) != len(g.Board) {
		t.Fatalf("view has %d cells, want %d", len(view.Cells), len(g.Board))
	}
	for _, cell := range view.Cells {
		if cell.Revealed {
			if cell.Owner == "" {
				t.Fatalf("revealed cell %d must show its owner", cell.Index)
			}
			continue
		}
		if cell.Owner != "" {
			t.Fatalf("unrevealed cell %d leaks owner %s", cell.Index, cell.Owner)
		}
	}
}

func TestSpymasterViewShowsFullKey(t *testing.T) {
	g := clueGame()
	view := SpymasterView(g)
	for _, cell := range view.Cells {
		if cell.Owner == "" {
			t.Fatalf("spymaster view missing owner for cell %d", cell.Index)
		}
	}
}

func TestViewForSelectsProjection(t *testing.T) {
	g := clueGame()

	if view := ViewFor(g, "r1"); view.Cells[0].Owner == "" {
		t.Fatalf("spymaster should get the full key")
	}
	if view := ViewFor(g, "r2"); view.Cells[0].Owner != "" {
		t.Fatalf("operative should not see unrevealed owners")
	}
	if view := ViewFor(g, "stranger"); view.Cells[0].Owner != "" {
		t.Fatalf("unknown viewers should get the hidden view")
	}
}

func TestViewForRevealsEverythingAfterGameOver(t *testing.T) {
	svc := newTestService()
	g := clueGame()
	if _, err := svc.Forfeit(g, domain.TeamRed); err != nil {
		t.Fatalf("forfeit error: %v", err)
	}
	if view := ViewFor(g, "r2"); view.Cells[0].Owner == "" {
		t.Fatalf("terminal games should show the full key to everyone")
	}
}

func TestViewCarriesClueHistory(t *testing.T) {
	svc := newTestService()
	g := guessGame(t, svc)

	view := OperativeView(g)
	if len(view.Clues) != 1 {
		t.Fatalf("view has %d clues, want 1", len(view.Clues))
	}
	if view.LatestClue == nil || view.LatestClue.Word != "Tier" {
		t.Fatalf("latest clue = %+v, want Tier", view.LatestClue)
	}
	if view.GuessesRemaining != 3 {
		t.Fatalf("guesses remaining = %d, want 3", view.GuessesRemaining)
	}
}
