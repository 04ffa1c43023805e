package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/markazhub/markaz/core/student"
	"github.com/markazhub/markaz/core/user"
	"github.com/markazhub/markaz/tests"
)

func Test_studentApi_register(t *testing.T) {
	ta := setup(t)

	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admin1", "admin@markaz.io", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, ta.usrRepo, "Teacher", "teach1", "teacher@markaz.io", "", []string{user.RoleTeacher}, true)
	branchID := testutil.NextID()
	existing := testutil.CreateStudent(t, ta.stdRepo, "Existing", "20260001", branchID, nil)

	body := func(nis, name string) []byte {
		return []byte(fmt.Sprintf(`{"nis":%q,"name":%q,"branch_id":%q}`, nis, name, branchID))
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, ta.conf, teacher), body: body("20260002", "Bilal"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Missing fields", token: getToken(t, ta.conf, admin), body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"nis": "this field is required", "name": "this field is required", "branch_id": "this field is required",
			}),
		},
		{
			name: "Duplicate NIS", token: getToken(t, ta.conf, admin), body: body(existing.NIS, "Clone"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"nis": "a student with this NIS already exists"}),
		},
		{name: "Registered", token: getToken(t, ta.conf, admin), body: body("20260002", "Bilal"), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/students", tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var std student.Student
				if err := json.Unmarshal(rec.Body.Bytes(), &std); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if std.ID == "" || std.NIS != "20260002" || std.Status != student.StatusActive {
					t.Errorf("unexpected student: %+v", std)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_retrieveByNIS(t *testing.T) {
	ta := setup(t)

	teacher := testutil.CreateUser(t, ta.usrRepo, "Teacher", "teach1", "teacher@markaz.io", "", []string{user.RoleTeacher}, true)
	std := testutil.CreateStudent(t, ta.stdRepo, "Bilal", "20260042", testutil.NextID(), nil)

	tests := []httpTest{
		{
			name: "Scan resolves the card number", path: "/v1/students/nis/" + std.NIS,
			wantCode: http.StatusOK, wantData: marchallObj(t, std),
		},
		{ // printed cards carry a separator hyphen
			name: "Hyphenated card number resolves too", path: "/v1/students/nis/2026-0042",
			wantCode: http.StatusOK, wantData: marchallObj(t, std),
		},
		{
			name: "Unknown card", path: "/v1/students/nis/99999999",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, getToken(t, ta.conf, teacher))
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_enrollment(t *testing.T) {
	ta := setup(t)

	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admin1", "admin@markaz.io", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, ta.conf, admin)
	std := testutil.CreateStudent(t, ta.stdRepo, "Bilal", "20260042", testutil.NextID(), nil)
	classID := testutil.NextID()

	enrollBody := marchallObj(t, map[string]string{"class_id": classID})

	// enroll
	req, rec := newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/enroll", adminToken, enrollBody)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("enroll failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var enrolled student.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &enrolled); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if !enrolled.IsEnrolledIn(classID) {
		t.Errorf("student not enrolled: %+v", enrolled.ClassIDs)
	}

	// enrolling twice is a no-op
	req, rec = newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/enroll", adminToken, enrollBody)
	ta.app.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &enrolled); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if len(enrolled.ClassIDs) != 1 {
		t.Errorf("class_ids = %v; want exactly one entry", enrolled.ClassIDs)
	}

	// unenroll
	req, rec = newAuthRequest(http.MethodPost, "/v1/students/"+std.ID+"/unenroll", adminToken, enrollBody)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unenroll failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var unenrolled student.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &unenrolled); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if unenrolled.IsEnrolledIn(classID) {
		t.Errorf("student still enrolled: %+v", unenrolled.ClassIDs)
	}

	// unknown student
	req, rec = newAuthRequest(http.MethodPost, "/v1/students/"+testutil.NextID()+"/enroll", adminToken, enrollBody)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
	}
}
