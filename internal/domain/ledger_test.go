package domain

import (
	"errors"
	"testing"
)

func TestClueLedgerAppendAndRead(t *testing.T) {
	var ledger ClueLedger

	if _, ok := ledger.Latest(); ok {
		t.Fatalf("empty ledger should have no latest clue")
	}

	first := Clue{ID: "c1", Team: TeamRed, Word: "Tier", Number: 2, Turn: 1}
	if err := ledger.Append(first); err != nil {
		t.Fatalf("append error: %v", err)
	}
	if err := ledger.Append(Clue{ID: "c2", Team: TeamBlue, Word: "Wasser", Number: 1, Turn: 2}); err != nil {
		t.Fatalf("append error: %v", err)
	}

	history := ledger.History()
	if len(history) != 2 {
		t.Fatalf("history len = %d, want 2", len(history))
	}
	if history[0].ID != "c1" || history[1].ID != "c2" {
		t.Fatalf("history out of order: %+v", history)
	}

	latest, ok := ledger.Latest()
	if !ok || latest.ID != "c2" {
		t.Fatalf("latest = %+v, want c2", latest)
	}
}

func TestClueLedgerRejectsSecondClueForTurn(t *testing.T) {
	var ledger ClueLedger
	if err := ledger.Append(Clue{ID: "c1", Turn: 1}); err != nil {
		t.Fatalf("append error: %v", err)
	}
	err := ledger.Append(Clue{ID: "c2", Turn: 1})
	if !errors.Is(err, ErrClueExistsForTurn) {
		t.Fatalf("err = %v, want ErrClueExistsForTurn", err)
	}
	if ledger.Len() != 1 {
		t.Fatalf("ledger len = %d, want 1 after rejected append", ledger.Len())
	}
}

func TestClueLedgerHistoryIsCopy(t *testing.T) {
	var ledger ClueLedger
	if err := ledger.Append(Clue{ID: "c1", Word: "Tier", Turn: 1}); err != nil {
		t.Fatalf("append error: %v", err)
	}
	history := ledger.History()
	history[0].Word = "mutated"

	latest, _ := ledger.Latest()
	if latest.Word != "Tier" {
		t.Fatalf("ledger mutated through History copy: %+v", latest)
	}
}
