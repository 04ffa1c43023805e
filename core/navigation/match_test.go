package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRoute(t *testing.T) {
	adminSet := Routes(RoleAdmin)
	teacherSet := Routes(RoleTeacher)

	tests := []struct {
		name string
		path string
		set  RouteSet
		want bool
	}{
		{"exact static match", "/dashboard", adminSet, true},
		{"exact static nested", "/dashboard/students", adminSet, true},
		{"dynamic segment", "/dashboard/students/abc-123", adminSet, true},
		{"two dynamic segments", "/teacher/classes/c1/students/s1", teacherSet, true},
		{"unknown path", "/nope", adminSet, false},
		{"other role's path", "/teacher/scan", adminSet, false},
		{"partial prefix is not a match", "/dashboard/students/abc-123/extra", adminSet, false},
		{"dynamic pattern needs its segment", "/dashboard/students/", adminSet, true}, // empty segment still fills ":studentId"
		{"trailing slash on static path", "/dashboard/", adminSet, false},
		{"trailing slash on matched dynamic path", "/teacher/classes/c1/", teacherSet, false},
		{"empty set fails closed", "/dashboard", RouteSet{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidRoute(tt.path, tt.set))
		})
	}
}

func TestIsValidRouteTrailingSlashStrictness(t *testing.T) {
	// segment counts must agree, so "/x" and "/x/" are distinct paths
	set := RouteSet{Routes: []RouteEntry{{"/teacher/classes/:classId", "my-class-detail"}}}

	assert.True(t, IsValidRoute("/teacher/classes/42", set))
	assert.False(t, IsValidRoute("/teacher/classes/42/", set))
	assert.False(t, IsValidRoute("/teacher/classes", set))
}

func TestRoutes(t *testing.T) {
	for _, role := range []Role{
		RoleAdmin, RoleBranchAdmin, RoleSubBranchAdmin,
		RoleTeacher, RoleStudent, RoleCurriculum, RoleMunaqisy,
	} {
		t.Run(string(role), func(t *testing.T) {
			set := Routes(role)
			assert.NotEmpty(t, set.Routes)
			assert.NotEmpty(t, set.Shell)
			assert.True(t, Known(role))

			// every role must be able to render its own fallback target
			assert.True(t, IsValidRoute(FallbackRoute(role, true), set))
		})
	}

	t.Run("unknown role degrades to guest set", func(t *testing.T) {
		set := Routes(Role("intruder"))
		assert.Equal(t, ShellNone, set.Shell)
		assert.False(t, Known(Role("intruder")))
	})
}

func TestFallbackRoute(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		loggedIn bool
		want     string
	}{
		{"logged out always lands on root", RoleAdmin, false, GuestLandingPath},
		{"guest logged out", RoleGuest, false, GuestLandingPath},
		{"admin", RoleAdmin, true, "/dashboard"},
		{"branch admin", RoleBranchAdmin, true, "/dashboard"},
		{"teacher", RoleTeacher, true, "/teacher"},
		{"student", RoleStudent, true, "/student"},
		{"curriculum", RoleCurriculum, true, "/curriculum"},
		{"munaqisy", RoleMunaqisy, true, "/munaqasyah"},
		{"unknown role gets generic dashboard", Role("wat"), true, GenericDashboardPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackRoute(tt.role, tt.loggedIn))
		})
	}
}
