package game

// RoleKind discriminates the tagged role variant stored on a player. The
// original scheme overloaded a single string column with sentinel prefixes;
// the explicit kind/value pair keeps the same states without string parsing.
type RoleKind string

const (
	RoleUnassigned RoleKind = ""
	RoleCharacter  RoleKind = "character"
	RoleSaboteur   RoleKind = "saboteur"
	RoleGenuine    RoleKind = "genuine"
)

// Role is a player's current assignment. Value carries the character id for
// RoleCharacter and the shared secret token for RoleGenuine; it is empty
// otherwise.
type Role struct {
	Kind  RoleKind
	Value string
}

func CharacterRole(characterID string) Role {
	return Role{Kind: RoleCharacter, Value: characterID}
}

func SaboteurRole() Role {
	return Role{Kind: RoleSaboteur}
}

func GenuineRole(token string) Role {
	return Role{Kind: RoleGenuine, Value: token}
}

// RoleOf reconstructs the role from its stored columns.
func RoleOf(kind, value string) Role {
	switch RoleKind(kind) {
	case RoleCharacter:
		return CharacterRole(value)
	case RoleSaboteur:
		return SaboteurRole()
	case RoleGenuine:
		return GenuineRole(value)
	default:
		return Role{}
	}
}

func (r Role) Assigned() bool {
	return r.Kind != RoleUnassigned
}
