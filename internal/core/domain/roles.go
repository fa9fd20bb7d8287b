package domain

import "sort"

// Role is the closed set of roles a user can act under.
type Role int

const (
	RoleSysAdmin Role = iota + 1
	RoleDirector
	RoleITSupport
	RoleCataloger
	RoleCirculationClerk
	RolePatron
)

// UnrankedPriority is the rank reported for codes outside the known set.
const UnrankedPriority = 99

var allRoles = []Role{
	RoleSysAdmin,
	RoleDirector,
	RoleITSupport,
	RoleCataloger,
	RoleCirculationClerk,
	RolePatron,
}

// AllRoles returns every known role in priority order.
func AllRoles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// Code returns the role code stored in the roles table.
func (r Role) Code() string {
	switch r {
	case RoleSysAdmin:
		return "ROLE_SYS_ADMIN"
	case RoleDirector:
		return "ROLE_DIRECTOR"
	case RoleITSupport:
		return "ROLE_IT_SUPPORT"
	case RoleCataloger:
		return "ROLE_CATALOGER"
	case RoleCirculationClerk:
		return "ROLE_CIRCULATION_CLERK"
	case RolePatron:
		return "ROLE_PATRON"
	}
	return ""
}

// Rank is the priority rank; lower wins.
func (r Role) Rank() int {
	switch r {
	case RoleSysAdmin:
		return 1
	case RoleDirector:
		return 2
	case RoleITSupport:
		return 3
	case RoleCataloger:
		return 4
	case RoleCirculationClerk:
		return 5
	case RolePatron:
		return 6
	}
	return UnrankedPriority
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Code() != ""
}

// IsStaff reports whether the role belongs to library staff.
func (r Role) IsStaff() bool {
	return r.Valid() && r.Rank() <= RoleCirculationClerk.Rank()
}

// IsAdministrative reports whether the role may run system maintenance.
func (r Role) IsAdministrative() bool {
	return r == RoleSysAdmin || r == RoleDirector || r == RoleITSupport
}

func (r Role) String() string {
	if c := r.Code(); c != "" {
		return c
	}
	return "ROLE_UNKNOWN"
}

// MarshalText encodes the role as its code.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ParseRole maps a role code to a Role.
func ParseRole(code string) (Role, bool) {
	for _, r := range allRoles {
		if r.Code() == code {
			return r, true
		}
	}
	return 0, false
}

// RoleSet is the set of active roles held by one user.
type RoleSet []Role

// NewRoleSet de-duplicates roles and orders them by precedence.
func NewRoleSet(roles ...Role) RoleSet {
	seen := make(map[Role]struct{}, len(roles))
	set := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		set = append(set, r)
	}
	sort.Slice(set, func(i, j int) bool { return outranks(set[i], set[j]) })
	return set
}

// outranks orders by rank, then by code so equal ranks stay deterministic.
func outranks(a, b Role) bool {
	if a.Rank() != b.Rank() {
		return a.Rank() < b.Rank()
	}
	return a.Code() < b.Code()
}

// Acting selects the role used for the database identity.
func (s RoleSet) Acting() (Role, bool) {
	if len(s) == 0 {
		return 0, false
	}
	best := s[0]
	for _, r := range s[1:] {
		if outranks(r, best) {
			best = r
		}
	}
	return best, true
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	for _, have := range s {
		if have == r {
			return true
		}
	}
	return false
}

// Any reports whether at least one role satisfies fn.
func (s RoleSet) Any(fn func(Role) bool) bool {
	for _, r := range s {
		if fn(r) {
			return true
		}
	}
	return false
}

// Codes returns the role codes in set order.
func (s RoleSet) Codes() []string {
	codes := make([]string, len(s))
	for i, r := range s {
		codes[i] = r.Code()
	}
	return codes
}
