package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/markazhub/markaz/apps/api/echo"
	"github.com/markazhub/markaz/core"
	"github.com/markazhub/markaz/core/academic"
	"github.com/markazhub/markaz/core/scoring"
	"github.com/markazhub/markaz/core/session"
	"github.com/markazhub/markaz/core/student"
	"github.com/markazhub/markaz/core/user"
	"github.com/markazhub/markaz/services/email"
	"github.com/markazhub/markaz/storage/database/inmem"
	"github.com/markazhub/markaz/storage/kv"
	"github.com/markazhub/markaz/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// testApp bundles the server with direct handles on its backing stores so
// tests can seed and inspect state.
type testApp struct {
	app  Server
	conf *core.Config

	usrRepo     user.Repository
	stdRepo     student.Repository
	acaRepo     academic.Repository
	scoringRepo scoring.Repository
	blobs       kv.Store
	sessions    *session.Store
}

func setup(t *testing.T) *testApp {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(t)

	// set up repos
	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	stdRepo := inmemdb.NewStudentRepository(db)
	acaRepo := inmemdb.NewAcademicRepository(db)
	scoringRepo := inmemdb.NewScoringRepository(db)
	blobs := kv.NewInMemStore()
	sessions := session.NewStore(blobs, nil)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	stdSvc := student.NewService(stdRepo)
	acaSvc := academic.NewService(acaRepo)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	app := NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     usrSvc,
		StudentSvc:  stdSvc,
		AcademicSvc: acaSvc,
		ScoringRepo: scoringRepo,
		Sessions:    sessions,
		Validate:    validate,
		Translator:  translator,
	})

	return &testApp{
		app:         app,
		conf:        conf,
		usrRepo:     usrRepo,
		stdRepo:     stdRepo,
		acaRepo:     acaRepo,
		scoringRepo: scoringRepo,
		blobs:       blobs,
		sessions:    sessions,
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkData(t *testing.T, wantData, data []byte) {
	t.Helper()
	ok, err := jsonBytesEqual(t, data, wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %s; wantData %s", data, wantData)
	}
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
