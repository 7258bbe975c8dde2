package ident

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// Alphabet excludes ambiguous characters (0/O, 1/I) so codes survive being
// read aloud across a living room.
const gameIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const GameIDLength = 6

// NewGameID returns a short join code for a game. Uniqueness is
// probabilistic; the store treats a collision as a retryable insert failure.
func NewGameID() string {
	buf := make([]byte, GameIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = gameIDAlphabet[int(buf[i])%len(gameIDAlphabet)]
	}
	return string(buf)
}

// NewPlayerID returns an opaque unique identifier for a player.
func NewPlayerID() string {
	return uuid.NewString()
}

// NewPin returns a 4-digit numeric host PIN.
func NewPin() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "0000"
	}
	for i := range buf {
		buf[i] = '0' + buf[i]%10
	}
	return string(buf)
}
