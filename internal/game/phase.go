package game

import (
	"whodunit/internal/content"
)

// Narrative variant phases. The manifest is the source of truth for which of
// these a given content pack uses; the constants cover the built-in pack.
const (
	PhaseLobby         = "LOBBY"
	PhaseIntro         = "INTRO"
	PhaseToast         = "TOAST"
	PhaseMurder        = "MURDER"
	PhaseIntroductions = "INTRODUCTIONS"
	PhasePlaying       = "PLAYING"
	PhaseFinished      = "FINISHED"
)

// Social-deduction variant phases (beyond the shared ones above).
const (
	PhaseAssign      = "ASSIGN"
	PhaseVoting      = "VOTING"
	PhaseElimination = "ELIMINATION"
)

// Definition is the finite-state-machine description for one game type:
// the state set, the initial state, and which host-declared transitions are
// legal. Narrative manifests declare their graph as data and leave transition
// choice to the host UI, so their definitions allow any move within the state
// set. The imposter definition is a constant with an enforced graph, since
// its ELIMINATION step is computed rather than host-declared.
type Definition struct {
	GameType    string
	Initial     string
	states      map[string]struct{}
	transitions map[string][]string
	anyOrder    bool
	order       []string
}

// HasState reports whether the phase belongs to this definition.
func (d Definition) HasState(phase string) bool {
	_, ok := d.states[phase]
	return ok
}

// CanTransition reports whether the host may declare a move from one phase
// to another. A no-op transition is always legal.
func (d Definition) CanTransition(from, to string) bool {
	if !d.HasState(to) {
		return false
	}
	if from == to || d.anyOrder {
		return true
	}
	for _, allowed := range d.transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// States returns the definition's state set in declaration order.
func (d Definition) States() []string {
	return append([]string(nil), d.order...)
}

func newDefinition(gameType string, states []string, transitions map[string][]string, anyOrder bool) Definition {
	def := Definition{
		GameType:    gameType,
		Initial:     states[0],
		states:      make(map[string]struct{}, len(states)),
		transitions: transitions,
		anyOrder:    anyOrder,
		order:       states,
	}
	for _, state := range states {
		def.states[state] = struct{}{}
	}
	return def
}

var imposterDefinition = newDefinition(
	content.GameTypeImposter,
	[]string{PhaseLobby, PhaseAssign, PhasePlaying, PhaseVoting, PhaseElimination, PhaseFinished},
	map[string][]string{
		PhaseLobby:       {PhaseAssign},
		PhaseAssign:      {PhasePlaying},
		PhasePlaying:     {PhaseVoting, PhaseFinished},
		PhaseVoting:      {PhaseElimination, PhasePlaying, PhaseFinished},
		PhaseElimination: {PhasePlaying, PhaseVoting, PhaseFinished},
	},
	false,
)

// DefinitionFromManifest builds a narrative definition from a content
// manifest. Transition legality is the manifest's concern; the engine only
// refuses phases the manifest never names.
func DefinitionFromManifest(m content.Manifest) Definition {
	return newDefinition(m.GameType, m.States(), nil, true)
}

// DefinitionFor resolves the state machine for a game type, consulting the
// content source for narrative manifests.
func DefinitionFor(gameType string, src content.Source) (Definition, error) {
	if gameType == content.GameTypeImposter {
		return imposterDefinition, nil
	}
	manifest, err := src.Manifest(gameType)
	if err != nil {
		return Definition{}, err
	}
	if len(manifest.Phases) == 0 {
		return Definition{}, content.ErrUnknownGameType
	}
	return DefinitionFromManifest(manifest), nil
}
