package store

import (
	"errors"
	"testing"
	"time"
)

func seedGame(t *testing.T, m *Memory, id string, expiresAt time.Time) {
	t.Helper()
	err := m.CreateGame(
		Game{ID: id, GameType: "imposter", Phase: "LOBBY", HostPin: "1234", MinPlayers: 3, ExpiresAt: expiresAt},
		Player{ID: id + "-host", GameID: id, Name: "Host", IsHost: true, Alive: true},
	)
	if err != nil {
		t.Fatalf("seed game %s: %v", id, err)
	}
}

func TestCreateGameCollision(t *testing.T) {
	m := NewMemory()
	seedGame(t, m, "AAAAAA", time.Now().Add(time.Hour))
	err := m.CreateGame(Game{ID: "AAAAAA"}, Player{ID: "p"})
	if !errors.Is(err, ErrIDCollision) {
		t.Fatalf("expected id collision, got %v", err)
	}
}

func TestFindPlayerByNameCaseInsensitive(t *testing.T) {
	m := NewMemory()
	seedGame(t, m, "AAAAAA", time.Now().Add(time.Hour))
	if err := m.AddPlayer(Player{ID: "p1", GameID: "AAAAAA", Name: "Ada", Alive: true}); err != nil {
		t.Fatal(err)
	}
	player, err := m.FindPlayerByName("AAAAAA", "aDa")
	if err != nil {
		t.Fatalf("expected a case-insensitive match, got %v", err)
	}
	if player.ID != "p1" {
		t.Fatalf("expected p1, got %q", player.ID)
	}
	if err := m.AddPlayer(Player{ID: "p2", GameID: "AAAAAA", Name: "ADA"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected name conflict, got %v", err)
	}
}

func TestUpsertVoteOverwrites(t *testing.T) {
	m := NewMemory()
	seedGame(t, m, "AAAAAA", time.Now().Add(time.Hour))
	if err := m.UpsertVote(Vote{GameID: "AAAAAA", Round: 1, VoterID: "v1", VotedForID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := m.UpsertVote(Vote{GameID: "AAAAAA", Round: 1, VoterID: "v1", VotedForID: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := m.UpsertVote(Vote{GameID: "AAAAAA", Round: 2, VoterID: "v1", VotedForID: "c"}); err != nil {
		t.Fatal(err)
	}

	votes, err := m.VotesForRound("AAAAAA", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(votes) != 1 || votes[0].VotedForID != "b" {
		t.Fatalf("expected the round-1 revote to overwrite, got %+v", votes)
	}
	votes, err = m.VotesForRound("AAAAAA", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(votes) != 1 || votes[0].VotedForID != "c" {
		t.Fatalf("expected the round-2 vote to stand alone, got %+v", votes)
	}
}

func TestRevealClueIdempotent(t *testing.T) {
	m := NewMemory()
	seedGame(t, m, "AAAAAA", time.Now().Add(time.Hour))
	for i := 0; i < 2; i++ {
		if err := m.RevealClue("AAAAAA", "clue-1"); err != nil {
			t.Fatal(err)
		}
	}
	snap, err := m.GetSnapshot("AAAAAA")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Clues) != 1 {
		t.Fatalf("expected one clue row, got %v", snap.Clues)
	}
}

func TestDeleteExpired(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	seedGame(t, m, "OLD111", now.Add(-time.Hour))
	seedGame(t, m, "NEW111", now.Add(time.Hour))

	deleted, err := m.DeleteExpired(now)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted game, got %d", deleted)
	}
	if _, err := m.GetGame("OLD111"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected the expired game to be gone, got %v", err)
	}
	if _, err := m.GetGame("NEW111"); err != nil {
		t.Fatalf("expected the live game to survive, got %v", err)
	}
}

func TestResetKeepsHost(t *testing.T) {
	m := NewMemory()
	seedGame(t, m, "AAAAAA", time.Now().Add(time.Hour))
	if err := m.AddPlayer(Player{ID: "p1", GameID: "AAAAAA", Name: "Ada", Alive: true}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetPhase("AAAAAA", "VOTING"); err != nil {
		t.Fatal(err)
	}
	if err := m.RecordKick("AAAAAA", "Mallory"); err != nil {
		t.Fatal(err)
	}

	if err := m.Reset("AAAAAA", "LOBBY"); err != nil {
		t.Fatal(err)
	}
	snap, err := m.GetSnapshot("AAAAAA")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Game.Phase != "LOBBY" || snap.Game.Round != 0 {
		t.Fatalf("expected lobby round 0, got %s round %d", snap.Game.Phase, snap.Game.Round)
	}
	if len(snap.Players) != 1 || !snap.Players[0].IsHost {
		t.Fatalf("expected only the host, got %+v", snap.Players)
	}
	kicked, err := m.IsKicked("AAAAAA", "mallory")
	if err != nil {
		t.Fatal(err)
	}
	if kicked {
		t.Fatal("reset must clear the kick list")
	}
}
