package domain

// Role is the member tier inside the community. It gates privileged
// operations and is displayed next to every message.
type Role string

const (
	RoleLeader   Role = "LEADER"
	RoleCoLeader Role = "CO_LEADER"
	RoleVeteran  Role = "VETERAN"
	RoleMember   Role = "MEMBER"
)

// ValidRole reports whether r is one of the four known tiers.
func ValidRole(r Role) bool {
	switch r {
	case RoleLeader, RoleCoLeader, RoleVeteran, RoleMember:
		return true
	}
	return false
}
