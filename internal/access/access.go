// Package access models who may see and change which zones.
package access

import "strings"

type Role string

const (
	RoleAdmin          Role = "admin"
	RoleDistrictLeader Role = "district_leader"
	RoleZoneLeader     Role = "zone_leader"
	RoleMember         Role = "member"
)

// ParseRole returns the role for a stored or claimed value. Unknown values map
// to RoleMember, the least privileged role.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleDistrictLeader:
		return RoleDistrictLeader
	case RoleZoneLeader:
		return RoleZoneLeader
	default:
		return RoleMember
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDistrictLeader, RoleZoneLeader, RoleMember:
		return true
	}
	return false
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Role   Role
	Zones  map[string]struct{}
}

func NewPrincipal(userID, email, role string, zones []string) *Principal {
	p := &Principal{
		UserID: userID,
		Email:  email,
		Role:   ParseRole(role),
		Zones:  make(map[string]struct{}, len(zones)),
	}
	for _, z := range zones {
		if z = strings.TrimSpace(z); z != "" {
			p.Zones[z] = struct{}{}
		}
	}
	return p
}

func (p *Principal) HasRole(roles ...Role) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// CanViewAllZones is true for roles that see the whole district.
func (p *Principal) CanViewAllZones() bool {
	return p.HasRole(RoleAdmin, RoleDistrictLeader)
}

func (p *Principal) inZone(zone string) bool {
	_, ok := p.Zones[zone]
	return ok
}

func (p *Principal) CanViewZone(zone string) bool {
	if p == nil {
		return false
	}
	return p.CanViewAllZones() || p.inZone(zone)
}

// CanManageZone covers writes to meetings, agendas and units of a zone.
func (p *Principal) CanManageZone(zone string) bool {
	if p == nil {
		return false
	}
	if p.CanViewAllZones() {
		return true
	}
	return p.Role == RoleZoneLeader && p.inZone(zone)
}

// VisibleZones returns the zones a restricted principal may see, or nil when
// every zone is visible.
func (p *Principal) VisibleZones() []string {
	if p.CanViewAllZones() {
		return nil
	}
	zones := make([]string, 0, len(p.Zones))
	for z := range p.Zones {
		zones = append(zones, z)
	}
	return zones
}
