// Package policy is the single authority for route access decisions. Role and
// tier checks live here instead of being scattered across handlers.
package policy

import (
	"github.com/emocare/emocare-backend/internal/requestdata"
	"github.com/emocare/emocare-backend/internal/types"
)

const (
	LoginTarget      = "/login"
	UpgradeTarget    = "/upgrade"
	AdminHome        = "/admin"
	PsychologistHome = "/psychologist"
	UserHome         = "/dashboard"
)

type Decision struct {
	Allow    bool
	Redirect string
}

var allow = Decision{Allow: true}

// RoleHome maps a role to its dashboard. Unknown roles land on the user home.
func RoleHome(role types.Role) string {
	switch role {
	case types.RoleAdmin:
		return AdminHome
	case types.RolePsychologist:
		return PsychologistHome
	default:
		return UserHome
	}
}

// Evaluate gates a route class against a principal. Pure function of its
// inputs; safe to call once per navigation. A zero requiredRole or
// requiredTier means that requirement is not imposed.
//
// A role mismatch reroutes to the principal's own role home rather than
// flatly denying; a tier mismatch reroutes to the upgrade target.
func Evaluate(rd *requestdata.RequestData, requiredRole types.Role, requiredTier types.Tier) Decision {
	if !rd.Authenticated() {
		return Decision{Redirect: LoginTarget}
	}
	if requiredRole != "" && rd.Role != requiredRole {
		return Decision{Redirect: RoleHome(rd.Role)}
	}
	if requiredTier != "" && rd.Tier != requiredTier {
		return Decision{Redirect: UpgradeTarget}
	}
	return allow
}
