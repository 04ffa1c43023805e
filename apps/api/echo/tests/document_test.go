package tests

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"github.com/markazhub/markaz/core/user"
	"github.com/markazhub/markaz/tests"
)

func Test_documentApi_generateIDCards(t *testing.T) {
	ta := setup(t)

	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admin1", "admin@markaz.io", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, ta.usrRepo, "Teacher", "teach1", "teacher@markaz.io", "", []string{user.RoleTeacher}, true)
	adminToken := getToken(t, ta.conf, admin)

	branchID := testutil.NextID()
	std1 := testutil.CreateStudent(t, ta.stdRepo, "Bilal", "20260001", branchID, nil)
	std2 := testutil.CreateStudent(t, ta.stdRepo, "Umar", "20260002", branchID, nil)
	testutil.CreateStudent(t, ta.stdRepo, "Zayd", "20260003", branchID, nil)

	t.Run("Auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodPost, "/v1/documents/id-cards", []byte(`{}`))
		ta.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Admin required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		req, rec := newAuthRequest(http.MethodPost, "/v1/documents/id-cards", getToken(t, ta.conf, teacher), []byte(`{}`))
		ta.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Unknown student rejected up front", func(t *testing.T) {
		ghost := testutil.NextID()
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_ids": "unknown student " + ghost}),
		}
		body := []byte(fmt.Sprintf(`{"student_ids":[%q,%q]}`, std1.ID, ghost))
		req, rec := newAuthRequest(http.MethodPost, "/v1/documents/id-cards", adminToken, body)
		ta.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Explicit IDs produce an archive", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"student_ids":[%q,%q]}`, std1.ID, std2.ID))
		req, rec := newAuthRequest(http.MethodPost, "/v1/documents/id-cards", adminToken, body)
		ta.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
			t.Errorf("Content-Type = %q; want application/zip", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="id-cards.zip"` {
			t.Errorf("Content-Disposition = %q", cd)
		}
		checkArchive(t, rec.Body.Bytes(), "id-card-20260001.pdf", "id-card-20260002.pdf")
	})

	t.Run("Empty filter covers the whole roster", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/documents/id-cards", adminToken, []byte(`{}`))
		ta.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		checkArchive(t, rec.Body.Bytes(), "id-card-20260001.pdf", "id-card-20260002.pdf", "id-card-20260003.pdf")
	})

}

func Test_documentApi_generateResultSheets(t *testing.T) {
	ta := setup(t)

	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admin1", "admin@markaz.io", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, ta.conf, admin)

	t.Run("No students is a validation error", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "no students matched the request"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/documents/result-sheets", adminToken, []byte(`{}`))
		ta.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	std := testutil.CreateStudent(t, ta.stdRepo, "Bilal", "20260042", testutil.NextID(), nil)

	t.Run("Sheets render even without munaqasyah records", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"student_ids":[%q]}`, std.ID))
		req, rec := newAuthRequest(http.MethodPost, "/v1/documents/result-sheets", adminToken, body)
		ta.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="munaqasyah-results.zip"` {
			t.Errorf("Content-Disposition = %q", cd)
		}
		checkArchive(t, rec.Body.Bytes(), "munaqasyah-20260042.pdf")
	})
}

func checkArchive(t *testing.T, archive []byte, wantFiles ...string) {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("zip.NewReader() failed: %v", err)
	}
	got := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		got[f.Name] = true
	}
	if len(got) != len(wantFiles) {
		t.Errorf("archive has %d files; want %d", len(got), len(wantFiles))
	}
	for _, name := range wantFiles {
		if !got[name] {
			t.Errorf("archive is missing %q", name)
		}
	}
}
