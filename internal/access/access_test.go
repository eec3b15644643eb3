package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole(" Admin "))
	assert.Equal(t, RoleDistrictLeader, ParseRole("district_leader"))
	assert.Equal(t, RoleZoneLeader, ParseRole("zone_leader"))
	assert.Equal(t, RoleMember, ParseRole("superuser"))
	assert.Equal(t, RoleMember, ParseRole(""))
	assert.False(t, Role("superuser").Valid())
	assert.True(t, RoleMember.Valid())
}

func TestZoneCapabilities(t *testing.T) {
	tests := []struct {
		name       string
		principal  *Principal
		viewZ1     bool
		viewZ9     bool
		manageZ1   bool
		allVisible bool
	}{
		{"admin", NewPrincipal("u", "", "admin", nil), true, true, true, true},
		{"district leader", NewPrincipal("u", "", "district_leader", nil), true, true, true, true},
		{"zone leader", NewPrincipal("u", "", "zone_leader", []string{"Z1", " "}), true, false, true, false},
		{"member", NewPrincipal("u", "", "member", []string{"Z1"}), true, false, false, false},
		{"nil", nil, false, false, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.viewZ1, tc.principal.CanViewZone("Z1"))
			assert.Equal(t, tc.viewZ9, tc.principal.CanViewZone("Z9"))
			assert.Equal(t, tc.manageZ1, tc.principal.CanManageZone("Z1"))
			assert.Equal(t, tc.allVisible, tc.principal.CanViewAllZones())
		})
	}
}

func TestVisibleZones(t *testing.T) {
	assert.Nil(t, NewPrincipal("u", "", "admin", []string{"Z1"}).VisibleZones())
	assert.Equal(t, []string{"Z1"}, NewPrincipal("u", "", "member", []string{"Z1", ""}).VisibleZones())
}
