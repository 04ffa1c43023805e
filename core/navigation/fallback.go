package navigation

// GuestLandingPath is where logged-out (or denied, unauthenticated)
// navigations are sent.
const GuestLandingPath = "/"

// GenericDashboardPath backs roles without a specialized dashboard entry.
const GenericDashboardPath = "/dashboard"

var roleDashboards = map[Role]string{
	RoleAdmin:          "/dashboard",
	RoleBranchAdmin:    "/dashboard",
	RoleSubBranchAdmin: "/dashboard",
	RoleTeacher:        "/teacher",
	RoleStudent:        "/student",
	RoleCurriculum:     "/curriculum",
	RoleMunaqisy:       "/munaqasyah",
}

// FallbackRoute returns the redirect path for a denied navigation.
// Pure and total: it never errors, whatever the role.
func FallbackRoute(role Role, loggedIn bool) string {
	if !loggedIn {
		return GuestLandingPath
	}
	if path, ok := roleDashboards[role]; ok {
		return path
	}
	return GenericDashboardPath
}
