package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/mahudhurio/apps/api/echo"
	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/payment"
	"github.com/trezcool/mahudhurio/core/staff"
	"github.com/trezcool/mahudhurio/core/student"
	appfs "github.com/trezcool/mahudhurio/fs"
	emailsvc "github.com/trezcool/mahudhurio/services/email"
	"github.com/trezcool/mahudhurio/storage/database/dummy"
	"github.com/trezcool/mahudhurio/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

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
}

type testEnv struct {
	app         *echoapi.Server
	conf        *core.Config
	db          *dummydb.DB
	staffRepo   staff.Repository
	courseRepo  course.Repository
	studentRepo student.Repository
	mailSvc     *emailsvc.ConsoleServiceMock

	admin      staff.User
	coach      staff.User
	adminToken string
	coachToken string
}

func setup(t *testing.T) testEnv {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	validate, translator := testutil.NewValidator()
	core.ParseEmailTemplates(appfs.FS, conf, logger)

	db, err := dummydb.Open()
	require.NoError(t, err)

	env := testEnv{
		conf:        conf,
		db:          db,
		staffRepo:   dummydb.NewStaffRepository(db),
		courseRepo:  dummydb.NewCourseRepository(db),
		studentRepo: dummydb.NewStudentRepository(db),
		mailSvc:     emailsvc.NewConsoleServiceMock(conf),
	}

	staffSvc := staff.NewService(env.staffRepo, validate)
	env.app = echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		StaffSvc:      staffSvc,
		CourseSvc:     course.NewService(env.courseRepo, validate),
		StudentSvc:    student.NewService(env.studentRepo, env.courseRepo, validate),
		AttendanceSvc: attendance.NewService(dummydb.NewAttendanceRepository(db), env.courseRepo, validate, conf, logger),
		PaymentSvc: payment.NewService(
			dummydb.NewPaymentRepository(db),
			dummydb.NewPaymentReportRepository(db),
			env.courseRepo,
			env.mailSvc,
			validate,
			conf,
			logger,
		),
		DisableReqLogs: true,
	})

	env.admin = testutil.CreateUser(t, env.staffRepo, "Admin Juma", "juma", "juma@test.cd", "Tr4ck&Field!", []string{staff.RoleAdmin}, true)
	env.coach = testutil.CreateUser(t, env.staffRepo, "Coach Kito", "kito", "kito@test.cd", "Tr4ck&Field!", []string{staff.RoleCoach}, true)
	env.adminToken = getToken(t, conf, env.admin)
	env.coachToken = getToken(t, conf, env.coach)
	return env
}

func (env testEnv) serve(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	env.app.ServeHTTP(rec, req)
	return rec
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

func getToken(t *testing.T, conf *core.Config, usr staff.User) string {
	token, err := echoapi.GenerateToken(conf, echoapi.GetStaffClaims(conf, usr))
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

func unmarshalBody(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarshalBody() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code")
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// fieldErrors decodes a 400 response into its {field: message} map.
func fieldErrors(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	errs := make(map[string]string)
	unmarshalBody(t, rec, &errs)
	return errs
}
