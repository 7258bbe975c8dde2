// Package content abstracts the static game-content packs. The rich assets
// (character sheets, storyline text, clue text) are fetched by the client
// directly; the server only needs the phase graph and the imposter word list
// for each game type.
package content

import "errors"

// PhaseNode is one node of a manifest's phase graph. Next is empty on the
// terminal phase.
type PhaseNode struct {
	ID    string
	Label string
	Next  string
}

// Manifest describes the host-driven phase graph for a narrative game type.
type Manifest struct {
	GameType string
	Phases   []PhaseNode
}

// States returns the set of phase ids the manifest names.
func (m Manifest) States() []string {
	states := make([]string, 0, len(m.Phases))
	for _, node := range m.Phases {
		states = append(states, node.ID)
	}
	return states
}

type Source interface {
	// Manifest returns the phase graph for a narrative game type.
	Manifest(gameType string) (Manifest, error)
	// Words returns the secret-word pool for a social-deduction game type.
	Words(gameType string) ([]string, error)
}

var ErrUnknownGameType = errors.New("unknown game type")

type defaultSource struct{}

// Default returns the compiled-in content source covering the built-in game
// types, so the server runs standalone without an asset host.
func Default() Source {
	return defaultSource{}
}

func (defaultSource) Manifest(gameType string) (Manifest, error) {
	switch gameType {
	case GameTypeMystery:
		return mysteryManifest, nil
	default:
		return Manifest{}, ErrUnknownGameType
	}
}

func (defaultSource) Words(gameType string) ([]string, error) {
	switch gameType {
	case GameTypeImposter:
		return imposterWords, nil
	default:
		return nil, ErrUnknownGameType
	}
}

const (
	GameTypeMystery  = "mystery"
	GameTypeImposter = "imposter"
)

var mysteryManifest = Manifest{
	GameType: GameTypeMystery,
	Phases: []PhaseNode{
		{ID: "LOBBY", Label: "Waiting for guests", Next: "INTRO"},
		{ID: "INTRO", Label: "Welcome", Next: "TOAST"},
		{ID: "TOAST", Label: "A toast", Next: "MURDER"},
		{ID: "MURDER", Label: "A body is found", Next: "INTRODUCTIONS"},
		{ID: "INTRODUCTIONS", Label: "Introductions", Next: "PLAYING"},
		{ID: "PLAYING", Label: "Investigation", Next: "FINISHED"},
		{ID: "FINISHED", Label: "Case closed"},
	},
}

var imposterWords = []string{
	"airport",
	"aquarium",
	"bakery",
	"campsite",
	"carnival",
	"casino",
	"castle",
	"cathedral",
	"cinema",
	"circus",
	"cruise ship",
	"desert island",
	"farm",
	"fire station",
	"greenhouse",
	"haunted house",
	"hospital",
	"lighthouse",
	"museum",
	"night train",
	"observatory",
	"opera house",
	"pirate ship",
	"ski lodge",
	"space station",
	"submarine",
	"vineyard",
	"zoo",
}
