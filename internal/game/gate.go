package game

import (
	"crypto/subtle"
	"fmt"

	"whodunit/internal/store"
)

// requireHost is the authorization gate every mutating admin action passes
// through. It loads the game row and compares the supplied PIN in constant
// time; on a miss nothing downstream runs, so a failed action never mutates
// state. Player-initiated actions (join, vote) do not call it.
func (s *Sessions) requireHost(gameID, pin string) (store.Game, error) {
	game, err := s.store.GetGame(gameID)
	if err != nil {
		return store.Game{}, err
	}
	if subtle.ConstantTimeCompare([]byte(pin), []byte(game.HostPin)) != 1 {
		return store.Game{}, fmt.Errorf("host pin mismatch: %w", ErrUnauthorized)
	}
	return game, nil
}
