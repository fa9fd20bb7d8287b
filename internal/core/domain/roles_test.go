package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseRole_RoundTrip(t *testing.T) {
	for _, r := range AllRoles() {
		parsed, ok := ParseRole(r.Code())
		require.True(t, ok, r.Code())
		assert.Equal(t, r, parsed)
	}

	_, ok := ParseRole("ROLE_JANITOR")
	assert.False(t, ok)
}

func TestRole_RanksAreDistinct(t *testing.T) {
	seen := map[int]Role{}
	for _, r := range AllRoles() {
		prev, dup := seen[r.Rank()]
		assert.False(t, dup, "%s shares rank with %s", r, prev)
		seen[r.Rank()] = r
	}
	assert.Equal(t, UnrankedPriority, Role(0).Rank())
}

func TestRoleSet_Acting(t *testing.T) {
	set := NewRoleSet(RolePatron, RoleCirculationClerk, RolePatron)

	acting, ok := set.Acting()
	require.True(t, ok)
	assert.Equal(t, RoleCirculationClerk, acting)
	assert.Equal(t, []string{"ROLE_CIRCULATION_CLERK", "ROLE_PATRON"}, set.Codes())

	_, ok = NewRoleSet().Acting()
	assert.False(t, ok)
}

func TestRoleSet_DropsUnknownRoles(t *testing.T) {
	set := NewRoleSet(Role(42), RolePatron)
	assert.Equal(t, RoleSet{RolePatron}, set)
}

func TestRoleSet_ActingIsLowestRankMember(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		roles := rapid.SliceOfN(rapid.SampledFrom(AllRoles()), 1, 12).Draw(t, "roles")
		set := NewRoleSet(roles...)

		acting, ok := set.Acting()
		if !ok {
			t.Fatalf("no acting role for %v", roles)
		}
		if !set.Has(acting) {
			t.Fatalf("acting role %s not in set %v", acting, set.Codes())
		}
		for _, r := range set {
			if r.Rank() < acting.Rank() {
				t.Fatalf("%s outranks acting role %s", r, acting)
			}
		}
	})
}

func TestRoleSet_ActingIgnoresInputOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		roles := rapid.SliceOfN(rapid.SampledFrom(AllRoles()), 1, 6).Draw(t, "roles")
		reversed := make([]Role, len(roles))
		for i, r := range roles {
			reversed[len(roles)-1-i] = r
		}

		a, _ := NewRoleSet(roles...).Acting()
		b, _ := NewRoleSet(reversed...).Acting()
		if a != b {
			t.Fatalf("acting role depends on order: %s vs %s", a, b)
		}
	})
}

func TestRole_StaffAndAdministrative(t *testing.T) {
	assert.True(t, RoleCirculationClerk.IsStaff())
	assert.False(t, RolePatron.IsStaff())
	assert.True(t, RoleITSupport.IsAdministrative())
	assert.False(t, RoleCataloger.IsAdministrative())
}
