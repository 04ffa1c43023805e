package navigation

// Role identifies which route table and navigation shell a session gets.
// It is derived from the highest-priority role string on the user record.
type Role string

const (
	RoleGuest          Role = ""
	RoleAdmin          Role = "admin"
	RoleBranchAdmin    Role = "branchAdmin"
	RoleSubBranchAdmin Role = "subBranchAdmin"
	RoleTeacher        Role = "teacher"
	RoleStudent        Role = "student"
	RoleCurriculum     Role = "curriculum"
	RoleMunaqisy       Role = "munaqisy"
)

// Shell names the navigation chrome wrapping a role's views.
type Shell string

const (
	ShellNone       Shell = "none" // passthrough, unauthenticated views
	ShellAdmin      Shell = "admin"
	ShellBranch     Shell = "branch"
	ShellSubBranch  Shell = "subbranch"
	ShellTeacher    Shell = "teacher"
	ShellStudent    Shell = "student"
	ShellCurriculum Shell = "curriculum"
	ShellMunaqisy   Shell = "munaqisy"
)

type (
	// RouteEntry binds one path pattern to a view. Patterns use ":segment"
	// tokens for dynamic segments.
	RouteEntry struct {
		PathPattern string
		View        string
	}

	// RouteSet is the complete table of permitted paths for one role.
	RouteSet struct {
		Routes []RouteEntry
		Shell  Shell
	}
)

// GuestAllowPrefixes are reachable without authentication, prefix-matched.
var GuestAllowPrefixes = []string{"/", "/reset-password", "/verify-email", "/demo"}

var guestRouteSet = RouteSet{
	Shell: ShellNone,
	Routes: []RouteEntry{
		{"/", "landing"},
		{"/reset-password", "reset-password"},
		{"/reset-password/:uid/:token", "reset-password-confirm"},
		{"/verify-email/:token", "verify-email"},
		{"/demo", "demo"},
	},
}

var routeTables = map[Role]RouteSet{
	RoleAdmin: {
		Shell: ShellAdmin,
		Routes: []RouteEntry{
			{"/dashboard", "admin-dashboard"},
			{"/dashboard/branches", "branch-list"},
			{"/dashboard/branches/:branchId", "branch-detail"},
			{"/dashboard/students", "student-list"},
			{"/dashboard/students/:studentId", "student-detail"},
			{"/dashboard/teachers", "teacher-list"},
			{"/dashboard/teachers/:teacherId", "teacher-detail"},
			{"/dashboard/classes", "class-list"},
			{"/dashboard/classes/:classId", "class-detail"},
			{"/dashboard/academic-years", "academic-year-list"},
			{"/dashboard/munaqasyah", "munaqasyah-overview"},
			{"/dashboard/id-cards", "id-card-bulk"},
			{"/settings/users", "user-admin"},
			{"/settings/users/:userId", "user-detail"},
			{"/settings/profile", "profile"},
		},
	},
	RoleBranchAdmin: {
		Shell: ShellBranch,
		Routes: []RouteEntry{
			{"/dashboard", "branch-dashboard"},
			{"/dashboard/sub-branches", "sub-branch-list"},
			{"/dashboard/sub-branches/:subBranchId", "sub-branch-detail"},
			{"/dashboard/students", "student-list"},
			{"/dashboard/students/:studentId", "student-detail"},
			{"/dashboard/classes", "class-list"},
			{"/dashboard/classes/:classId", "class-detail"},
			{"/dashboard/attendance", "attendance-overview"},
			{"/dashboard/id-cards", "id-card-bulk"},
			{"/settings/profile", "profile"},
		},
	},
	RoleSubBranchAdmin: {
		Shell: ShellSubBranch,
		Routes: []RouteEntry{
			{"/dashboard", "sub-branch-dashboard"},
			{"/dashboard/students", "student-list"},
			{"/dashboard/students/:studentId", "student-detail"},
			{"/dashboard/classes", "class-list"},
			{"/dashboard/classes/:classId", "class-detail"},
			{"/dashboard/attendance", "attendance-overview"},
			{"/settings/profile", "profile"},
		},
	},
	RoleTeacher: {
		Shell: ShellTeacher,
		Routes: []RouteEntry{
			{"/teacher", "teacher-dashboard"},
			{"/teacher/classes", "my-class-list"},
			{"/teacher/classes/:classId", "my-class-detail"},
			{"/teacher/classes/:classId/attendance", "class-attendance"},
			{"/teacher/classes/:classId/students/:studentId", "class-student-detail"},
			{"/teacher/scan", "attendance-scanner"},
			{"/settings/profile", "profile"},
		},
	},
	RoleStudent: {
		Shell: ShellStudent,
		Routes: []RouteEntry{
			{"/student", "student-dashboard"},
			{"/student/progress", "my-progress"},
			{"/student/scores", "my-scores"},
			{"/student/id-card", "my-id-card"},
			{"/settings/profile", "profile"},
		},
	},
	RoleCurriculum: {
		Shell: ShellCurriculum,
		Routes: []RouteEntry{
			{"/curriculum", "curriculum-dashboard"},
			{"/curriculum/classes", "class-list"},
			{"/curriculum/classes/:classId", "class-detail"},
			{"/curriculum/munaqasyah", "munaqasyah-overview"},
			{"/curriculum/munaqasyah/:sessionId", "munaqasyah-detail"},
			{"/settings/profile", "profile"},
		},
	},
	RoleMunaqisy: {
		Shell: ShellMunaqisy,
		Routes: []RouteEntry{
			{"/munaqasyah", "examiner-dashboard"},
			{"/munaqasyah/scan", "examiner-scanner"},
			{"/munaqasyah/score/:studentId", "examiner-scoring"},
			{"/settings/profile", "profile"},
		},
	},
}

// Routes returns the RouteSet for a role. An unknown or empty role degrades
// to the guest set rather than erroring.
func Routes(role Role) RouteSet {
	if set, ok := routeTables[role]; ok {
		return set
	}
	return guestRouteSet
}

// Known reports whether role has its own route table.
func Known(role Role) bool {
	_, ok := routeTables[role]
	return ok
}
