package navigation

import "strings"

type DecisionKind int

const (
	DecisionRender DecisionKind = iota
	DecisionRedirect
)

// Decision is the guard's verdict on one navigation event. Redirects always
// carry replace-history semantics: the denied path must not remain reachable
// via the back button.
type Decision struct {
	Kind DecisionKind

	// render
	View  string
	Shell Shell

	// redirect
	RedirectTo     string
	ReplaceHistory bool
	// PreservedPath carries the originally requested path across a
	// login redirect so the client can resume it after authentication.
	PreservedPath string
}

func render(view string, shell Shell) Decision {
	return Decision{Kind: DecisionRender, View: view, Shell: shell}
}

func redirect(to string) Decision {
	return Decision{Kind: DecisionRedirect, RedirectTo: to, ReplaceHistory: true}
}

// Guard approves or redirects navigation attempts. It consults only the
// static route tables: authorization denial is a silent redirect, never an
// error, so restricted routes are not leaked.
type Guard struct{}

func NewGuard() *Guard { return &Guard{} }

// Resolve decides render-vs-redirect for one navigation event.
// Pure client-side policy: no I/O, no retries. The decision restarts the
// cycle on the redirect target, which is always resolvable (dashboards and
// the guest landing are members of their own route tables).
func (g *Guard) Resolve(path string, role Role, loggedIn bool) Decision {
	if !loggedIn {
		if guestAllowed(path) {
			set := Routes(RoleGuest)
			if view, ok := lookupView(path, set); ok {
				return render(view, set.Shell)
			}
			return render("landing", set.Shell)
		}
		d := redirect(GuestLandingPath)
		d.PreservedPath = path
		return d
	}

	if path == GuestLandingPath {
		return redirect(FallbackRoute(role, true))
	}

	set := Routes(role)
	// a malformed/unknown role holds the guest set here and fails the
	// validity check for any authenticated path, landing on the fallback
	if !Known(role) || !IsValidRoute(path, set) {
		return redirect(FallbackRoute(role, true))
	}

	view, _ := lookupView(path, set)
	return render(view, set.Shell)
}

// guestAllowed prefix-matches path against the fixed unauthenticated
// allow-list. Root is exact; the other entries match any sub-path.
func guestAllowed(path string) bool {
	for _, prefix := range GuestAllowPrefixes {
		if prefix == GuestLandingPath {
			if path == prefix {
				return true
			}
			continue
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func lookupView(path string, set RouteSet) (string, bool) {
	for _, entry := range set.Routes {
		if entry.PathPattern == path {
			return entry.View, true
		}
	}
	segs := strings.Split(path, "/")
	for _, entry := range set.Routes {
		if !strings.Contains(entry.PathPattern, ":") {
			continue
		}
		if matchSegments(strings.Split(entry.PathPattern, "/"), segs) {
			return entry.View, true
		}
	}
	return "", false
}
