package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/markazhub/markaz/core/academic"
	"github.com/markazhub/markaz/core/user"
	"github.com/markazhub/markaz/tests"
)

func Test_academicApi_access(t *testing.T) {
	ta := setup(t)

	teacher := testutil.CreateUser(t, ta.usrRepo, "Teacher", "teach01", "teacher@markaz.io", "", []string{user.RoleTeacher}, true)
	branchAdmin := testutil.CreateUser(t, ta.usrRepo, "Branch Admin", "badmin01", "badmin@markaz.io", "", []string{user.RoleAdminBranch}, true)

	errForbidden := marchallObj(t, httpErr{Error: "permission denied"})
	tests := []httpTest{
		{
			name: "Create branch: auth required", method: http.MethodPost, path: "/v1/branches",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Create branch: teacher forbidden", method: http.MethodPost, path: "/v1/branches",
			token: getToken(t, ta.conf, teacher), wantCode: http.StatusForbidden, wantData: errForbidden,
		},
		{ // only the top admin role may create branches
			name: "Create branch: branch admin forbidden", method: http.MethodPost, path: "/v1/branches",
			token: getToken(t, ta.conf, branchAdmin), wantCode: http.StatusForbidden, wantData: errForbidden,
		},
		{
			name: "Create year: teacher forbidden", method: http.MethodPost, path: "/v1/years",
			token: getToken(t, ta.conf, teacher), wantCode: http.StatusForbidden, wantData: errForbidden,
		},
		{
			name: "Attendance: auth required", method: http.MethodPost, path: "/v1/attendance/scan",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_academicApi_yearLifecycle(t *testing.T) {
	ta := setup(t)

	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admin01", "admin@markaz.io", "", []string{user.RoleAdmin}, true)
	token := getToken(t, ta.conf, admin)

	do := func(t *testing.T, method, path string, body []byte, wantCode int) []byte {
		t.Helper()
		req, rec := newAuthRequest(method, path, token, body)
		ta.app.ServeHTTP(rec, req)
		if rec.Code != wantCode {
			t.Fatalf("%s %s failed! code = %v; wantCode %v; body %s", method, path, rec.Code, wantCode, rec.Body.String())
		}
		return rec.Body.Bytes()
	}
	yearBody := func(branchID, name string) []byte {
		starts := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		return []byte(fmt.Sprintf(
			`{"branch_id":%q,"name":%q,"starts_at":%q,"ends_at":%q}`,
			branchID, name, starts.Format(time.RFC3339), starts.AddDate(1, 0, 0).Format(time.RFC3339),
		))
	}

	var br academic.Branch
	body := do(t, http.MethodPost, "/v1/branches", []byte(`{"name":"Markaz Pusat","address":"Jl. Raya 1"}`), http.StatusCreated)
	if err := json.Unmarshal(body, &br); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}

	// a year needs an existing branch
	body = do(t, http.MethodPost, "/v1/years", yearBody(testutil.NextID(), "1447/1448"), http.StatusBadRequest)
	checkData(t, marchallObj(t, map[string]string{"branch_id": "unknown branch"}), body)

	var year academic.BranchYear
	body = do(t, http.MethodPost, "/v1/years", yearBody(br.ID, "1447/1448"), http.StatusCreated)
	if err := json.Unmarshal(body, &year); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if year.Status != academic.YearDraft {
		t.Errorf("status = %q; want %q", year.Status, academic.YearDraft)
	}

	body = do(t, http.MethodPost, "/v1/years/"+year.ID+"/activate", nil, http.StatusOK)
	if err := json.Unmarshal(body, &year); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if year.Status != academic.YearActive {
		t.Errorf("status = %q; want %q", year.Status, academic.YearActive)
	}

	// already active
	body = do(t, http.MethodPost, "/v1/years/"+year.ID+"/activate", nil, http.StatusBadRequest)
	checkData(t, marchallObj(t, httpErr{Error: "only a draft year can be activated"}), body)

	// a second draft cannot go active while the first holds the slot
	var year2 academic.BranchYear
	body = do(t, http.MethodPost, "/v1/years", yearBody(br.ID, "1448/1449"), http.StatusCreated)
	if err := json.Unmarshal(body, &year2); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	body = do(t, http.MethodPost, "/v1/years/"+year2.ID+"/activate", nil, http.StatusBadRequest)
	checkData(t, marchallObj(t, httpErr{Error: "branch already has an active year"}), body)

	// drafts cannot be closed either
	body = do(t, http.MethodPost, "/v1/years/"+year2.ID+"/close", nil, http.StatusBadRequest)
	checkData(t, marchallObj(t, httpErr{Error: "only an active year can be closed"}), body)

	body = do(t, http.MethodPost, "/v1/years/"+year.ID+"/close", nil, http.StatusOK)
	if err := json.Unmarshal(body, &year); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if year.Status != academic.YearClosed || year.ClosedAt == nil {
		t.Errorf("year = %+v; want closed with timestamp", year)
	}

	// the slot is free again
	do(t, http.MethodPost, "/v1/years/"+year2.ID+"/activate", nil, http.StatusOK)

	body = do(t, http.MethodPost, "/v1/years/"+testutil.NextID()+"/activate", nil, http.StatusNotFound)
	checkData(t, marchallObj(t, httpErr{Error: "not found"}), body)

	var years []academic.BranchYear
	body = do(t, http.MethodGet, "/v1/branches/"+br.ID+"/years", nil, http.StatusOK)
	if err := json.Unmarshal(body, &years); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if len(years) != 2 {
		t.Errorf("len(years) = %d; want 2", len(years))
	}
}

func Test_academicApi_attendance(t *testing.T) {
	ta := setup(t)

	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admin01", "admin@markaz.io", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, ta.usrRepo, "Teacher", "teach01", "teacher@markaz.io", "", []string{user.RoleTeacher}, true)
	adminToken := getToken(t, ta.conf, admin)
	teacherToken := getToken(t, ta.conf, teacher)

	do := func(t *testing.T, method, path, token string, body []byte, wantCode int) []byte {
		t.Helper()
		req, rec := newAuthRequest(method, path, token, body)
		ta.app.ServeHTTP(rec, req)
		if rec.Code != wantCode {
			t.Fatalf("%s %s failed! code = %v; wantCode %v; body %s", method, path, rec.Code, wantCode, rec.Body.String())
		}
		return rec.Body.Bytes()
	}

	var br academic.Branch
	body := do(t, http.MethodPost, "/v1/branches", adminToken, []byte(`{"name":"Markaz Pusat"}`), http.StatusCreated)
	if err := json.Unmarshal(body, &br); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	var year academic.BranchYear
	body = do(t, http.MethodPost, "/v1/years", adminToken, []byte(fmt.Sprintf(
		`{"branch_id":%q,"name":"1447/1448","starts_at":"2026-07-01T00:00:00Z","ends_at":"2027-07-01T00:00:00Z"}`, br.ID,
	)), http.StatusCreated)
	if err := json.Unmarshal(body, &year); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}

	// classes need an existing year
	body = do(t, http.MethodPost, "/v1/classes", adminToken, []byte(fmt.Sprintf(
		`{"branch_year_id":%q,"name":"Tahfidz 1A"}`, testutil.NextID(),
	)), http.StatusBadRequest)
	checkData(t, marchallObj(t, map[string]string{"branch_year_id": "unknown branch year"}), body)

	var cls academic.Class
	body = do(t, http.MethodPost, "/v1/classes", adminToken, []byte(fmt.Sprintf(
		`{"branch_year_id":%q,"name":"Tahfidz 1A","teacher_id":%q}`, year.ID, teacher.ID,
	)), http.StatusCreated)
	if err := json.Unmarshal(body, &cls); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}

	std := testutil.CreateStudent(t, ta.stdRepo, "Ahmad Fulan", "20260042", br.ID, []string{cls.ID})

	// sessions need an existing class
	body = do(t, http.MethodPost, "/v1/attendance/sessions", teacherToken, []byte(fmt.Sprintf(
		`{"class_id":%q,"held_at":"2026-08-31T07:30:00Z"}`, testutil.NextID(),
	)), http.StatusBadRequest)
	checkData(t, marchallObj(t, map[string]string{"class_id": "unknown class"}), body)

	var session academic.AttendanceSession
	body = do(t, http.MethodPost, "/v1/attendance/sessions", teacherToken, []byte(fmt.Sprintf(
		`{"class_id":%q,"topic":"Juz 30 review","held_at":"2026-08-31T07:30:00Z"}`, cls.ID,
	)), http.StatusCreated)
	if err := json.Unmarshal(body, &session); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if session.OpenedBy != teacher.ID {
		t.Errorf("opened_by = %q; want %q", session.OpenedBy, teacher.ID)
	}

	scanBody := func(sessionID, studentID string) []byte {
		return []byte(fmt.Sprintf(`{"session_id":%q,"student_id":%q}`, sessionID, studentID))
	}

	body = do(t, http.MethodPost, "/v1/attendance/scan", teacherToken, scanBody(session.ID, testutil.NextID()), http.StatusBadRequest)
	checkData(t, marchallObj(t, map[string]string{"student_id": "unknown student"}), body)

	body = do(t, http.MethodPost, "/v1/attendance/scan", teacherToken, scanBody(testutil.NextID(), std.ID), http.StatusNotFound)
	checkData(t, marchallObj(t, httpErr{Error: "not found"}), body)

	var rec academic.AttendanceRecord
	body = do(t, http.MethodPost, "/v1/attendance/scan", teacherToken, scanBody(session.ID, std.ID), http.StatusOK)
	if err := json.Unmarshal(body, &rec); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if rec.SessionID != session.ID || rec.StudentID != std.ID || rec.ScannedAt.IsZero() {
		t.Errorf("record = %+v; want scan of %s in %s", rec, std.ID, session.ID)
	}

	// a re-scan returns the original record; the first timestamp sticks
	var rescan academic.AttendanceRecord
	body = do(t, http.MethodPost, "/v1/attendance/scan", teacherToken, scanBody(session.ID, std.ID), http.StatusOK)
	if err := json.Unmarshal(body, &rescan); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if !rescan.ScannedAt.Equal(rec.ScannedAt) {
		t.Errorf("rescan ScannedAt = %v; want %v", rescan.ScannedAt, rec.ScannedAt)
	}

	var records []academic.AttendanceRecord
	body = do(t, http.MethodGet, "/v1/attendance/sessions/"+session.ID, teacherToken, nil, http.StatusOK)
	if err := json.Unmarshal(body, &records); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len(records) = %d; want 1", len(records))
	}
}
