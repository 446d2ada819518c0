package domain

import "strings"

// RouteClass is the access class a request path falls into.
type RouteClass int

const (
	RouteUnclassified RouteClass = iota
	RouteProtected
	RouteAuthOnly
)

func (c RouteClass) String() string {
	switch c {
	case RouteProtected:
		return "protected"
	case RouteAuthOnly:
		return "auth_only"
	default:
		return "unclassified"
	}
}

// RouteRules holds the two disjoint, ordered prefix lists that drive the
// session guard. Declaration order is significant: the first matching prefix
// wins, protected prefixes before auth-only ones.
type RouteRules struct {
	Protected []string
	AuthOnly  []string
}

// DefaultRouteRules returns the page routes of the housing site.
func DefaultRouteRules() RouteRules {
	return RouteRules{
		Protected: []string{"/dashboard", "/profile", "/social", "/landlord/dashboard"},
		AuthOnly:  []string{"/login"},
	}
}

// Classify returns the class of path and the prefix that matched it.
func (r RouteRules) Classify(path string) (RouteClass, string) {
	for _, prefix := range r.Protected {
		if strings.HasPrefix(path, prefix) {
			return RouteProtected, prefix
		}
	}
	for _, prefix := range r.AuthOnly {
		if strings.HasPrefix(path, prefix) {
			return RouteAuthOnly, prefix
		}
	}
	return RouteUnclassified, ""
}

// SessionDecision is the terminal state of the per-request session guard.
type SessionDecision string

const (
	DecisionAllow           SessionDecision = "allow"
	DecisionRedirectToLogin SessionDecision = "redirect_to_login"
	DecisionRedirectToHome  SessionDecision = "redirect_to_home"
)

// Decide resolves the guard state machine once the session has been read.
// authenticated must already be false for unreadable sessions.
func (r RouteRules) Decide(path string, authenticated bool) SessionDecision {
	class, _ := r.Classify(path)
	switch {
	case class == RouteProtected && !authenticated:
		return DecisionRedirectToLogin
	case class == RouteAuthOnly && authenticated:
		return DecisionRedirectToHome
	default:
		return DecisionAllow
	}
}
