package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/markazhub/markaz/apps/api/echo"
	"github.com/markazhub/markaz/core/user"
	"github.com/markazhub/markaz/tests"
)

func Test_userApi_login(t *testing.T) {
	ta := setup(t)

	testutil.CreateUser(t, ta.usrRepo, "Hamid", "hamid1", "hamid@markaz.io", "LeSecret!", []string{user.RoleTeacher}, true)
	testutil.CreateUser(t, ta.usrRepo, "N Dog", "ndog01", "ndog@markaz.io", "LeSecret!", nil, false)

	tests := []httpTest{
		{
			name: "empty body", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: []byte(`{"username":"ghost","password":"LeSecret!"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: []byte(`{"username":"hamid1","password":"nope"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: []byte(`{"username":"ndog01","password":"LeSecret!"}`), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login by username", body: []byte(`{"username":"hamid1","password":"LeSecret!"}`), wantCode: http.StatusOK},
		{name: "login by email", body: []byte(`{"username":"hamid@markaz.io","password":"LeSecret!"}`), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			ta.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var resp echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if resp.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userQuery(t *testing.T) {
	ta := setup(t)

	path := func(search, ordering string, isActive *bool, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if isActive != nil {
			v.Add("is_active", strconv.FormatBool(*isActive))
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}
	bPtr := func(b bool) *bool { return &b }

	now := time.Now()
	t1 := now.Add(1 * time.Hour)
	t2 := now.Add(2 * time.Hour)

	teacher := testutil.CreateUser(t, ta.usrRepo, "Teacher", "teach1", "teacher@markaz.io", "", []string{user.RoleTeacher}, true, t1)
	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admin1", "admin@markaz.io", "", []string{user.RoleAdmin}, true)
	examiner := testutil.CreateUser(t, ta.usrRepo, "Examiner", "exam01", "exam@markaz.io", "", []string{user.RoleMunaqisy}, true, t2)
	naughty := testutil.CreateUser(t, ta.usrRepo, "N Dog", "ndog01", "ndog@markaz.io", "", []string{user.RoleStudent}, false)

	adminToken := getToken(t, ta.conf, admin)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, ta.conf, teacher), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Get all", path: "/v1/users", token: adminToken, wantData: marchallList(t, teacher, admin, examiner, naughty)},
		{name: "search (unknown)", path: path("lol", "", nil), token: adminToken, wantData: empty},
		{name: "search=exam", path: path("exam", "", nil), token: adminToken, wantData: marchallList(t, examiner)},
		{name: "role (unknown)", path: path("", "", nil, "lol"), token: adminToken, wantData: empty},
		{name: "role=teacher:", path: path("", "", nil, user.RoleTeacher), token: adminToken, wantData: marchallList(t, teacher)},
		{
			name: "role=teacher:,munaqisy:", path: path("", "", nil, user.RoleTeacher, user.RoleMunaqisy),
			token: adminToken, wantData: marchallList(t, teacher, examiner),
		},
		{name: "is_active=false", path: path("", "", bPtr(false)), token: adminToken, wantData: marchallList(t, naughty)},
		{
			name: "order by created_at", path: path("", "created_at", nil), token: adminToken,
			extra: []string{admin.ID, naughty.ID, teacher.ID, examiner.ID},
		},
		{
			name: "order by -created_at", path: path("", "-created_at", nil), token: adminToken,
			extra: []string{examiner.ID, teacher.ID, naughty.ID, admin.ID},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)

			if wantIDs, ok := tt.extra.([]string); ok {
				// ordering tests check sequence, not payloads
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var users []user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				gotIDs := make([]string, 0, len(users))
				for _, usr := range users {
					gotIDs = append(gotIDs, usr.ID)
				}
				if len(gotIDs) != len(wantIDs) {
					t.Fatalf("failed! got %d users; want %d", len(gotIDs), len(wantIDs))
				}
				for i := range wantIDs {
					if gotIDs[i] != wantIDs[i] {
						t.Errorf("failed! order = %v; want %v", gotIDs, wantIDs)
						break
					}
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userDetail(t *testing.T) {
	ta := setup(t)

	teacher := testutil.CreateUser(t, ta.usrRepo, "Teacher", "teach1", "teacher@markaz.io", "", []string{user.RoleTeacher}, true)
	other := testutil.CreateUser(t, ta.usrRepo, "Other", "other1", "other@markaz.io", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admin1", "admin@markaz.io", "", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/users/" + teacher.ID,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Own detail", path: "/v1/users/" + teacher.ID, token: getToken(t, ta.conf, teacher),
			wantCode: http.StatusOK, wantData: marchallObj(t, teacher),
		},
		{
			name: "Someone else's detail is a 404", path: "/v1/users/" + other.ID, token: getToken(t, ta.conf, teacher),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Admin reads anyone", path: "/v1/users/" + other.ID, token: getToken(t, ta.conf, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, other),
		},
		{
			name: "Unknown ID", path: "/v1/users/nope", token: getToken(t, ta.conf, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userRefreshToken(t *testing.T) {
	ta := setup(t)

	naughty := testutil.CreateUser(t, ta.usrRepo, "N Dog", "ndog01", "ndog@markaz.io", "", []string{user.RoleStudent}, false)
	teacher := testutil.CreateUser(t, ta.usrRepo, "Teacher", "teach1", "teacher@markaz.io", "", []string{user.RoleTeacher}, true)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    ta.conf.AppName,
			Subject:   teacher.ID,
			Audience:  "Markaz",
			ExpiresAt: now.Add(ta.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * ta.conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Username:     teacher.Username,
		Email:        teacher.Email,
		IsTeacher:    teacher.IsTeacher(),
		Roles:        teacher.Roles,
	}
	unrefreshableToken, err := echoapi.GenerateToken(ta.conf, unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, ta.conf, naughty),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, ta.conf, teacher), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)

			// cannot guess the new token; just check that it is not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var resp echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if resp.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
