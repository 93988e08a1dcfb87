package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/testutil"
)

func Test_courseApi_create(t *testing.T) {
	env := setup(t)
	testutil.CreateCourse(t, env.courseRepo, "Karate")

	tests := []httpTest{
		{name: "auth required", body: []byte(`{"name": "Judo"}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin required", body: []byte(`{"name": "Judo"}`), token: env.coachToken, wantCode: http.StatusForbidden},
		{name: "blank name", body: []byte(`{"name": "   "}`), token: env.adminToken, wantCode: http.StatusBadRequest},
		{
			name: "duplicate name", body: []byte(`{"name": " Karate "}`), token: env.adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": course.ErrCourseExists.Error()}),
		},
		{name: "valid", body: []byte(`{"name": " Judo ", "description": "ippon"}`), token: env.adminToken, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method, tt.path = http.MethodPost, "/v1/courses"
			rec := env.serve(tt)
			checkCodeAndData(t, tt, rec)
			if tt.wantCode == http.StatusCreated {
				var crs course.Course
				unmarshalBody(t, rec, &crs)
				assert.NotEmpty(t, crs.ID)
				assert.Equal(t, "Judo", crs.Name)
			}
		})
	}
}

func Test_courseApi_retrieve(t *testing.T) {
	env := setup(t)
	crs := testutil.CreateCourse(t, env.courseRepo, "Karate")
	lvl := testutil.CreateLevel(t, env.courseRepo, crs.ID, course.LevelBeginner, course.Monday)

	notFound := marchallObj(t, httpErr{Error: "course not found"})
	tests := []httpTest{
		{name: "unknown course", path: "/v1/courses/nope", token: env.coachToken, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "course", path: "/v1/courses/" + crs.ID, token: env.coachToken, wantCode: http.StatusOK, wantData: marchallObj(t, crs)},
		{name: "levels of unknown course", path: "/v1/courses/nope/levels", token: env.coachToken, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "levels", path: "/v1/courses/" + crs.ID + "/levels", token: env.coachToken, wantCode: http.StatusOK, wantData: marchallObj(t, []course.CourseLevel{lvl})},
		{
			name: "unknown level", path: "/v1/course-levels/nope", token: env.coachToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "course level not found"}),
		},
		{name: "level", path: "/v1/course-levels/" + lvl.ID, token: env.coachToken, wantCode: http.StatusOK, wantData: marchallObj(t, lvl)},
		{name: "level options", path: "/v1/courses/levels", token: env.coachToken, wantCode: http.StatusOK, wantData: marchallObj(t, course.Levels)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.serve(tt))
		})
	}
}

func Test_courseApi_levels(t *testing.T) {
	env := setup(t)
	crs := testutil.CreateCourse(t, env.courseRepo, "Karate")
	testutil.CreateLevel(t, env.courseRepo, crs.ID, course.LevelBeginner, course.Monday)
	path := "/v1/courses/" + crs.ID + "/levels"

	tests := []httpTest{
		{name: "admin required", body: []byte(`{"level": "ADVANCED", "attendance_days": ["thursday"]}`), token: env.coachToken, wantCode: http.StatusForbidden},
		{name: "bad weekday", body: []byte(`{"level": "ADVANCED", "attendance_days": ["funday"]}`), token: env.adminToken, wantCode: http.StatusBadRequest},
		{name: "no days", body: []byte(`{"level": "ADVANCED", "attendance_days": []}`), token: env.adminToken, wantCode: http.StatusBadRequest},
		{name: "bad level", body: []byte(`{"level": "MASTER", "attendance_days": ["monday"]}`), token: env.adminToken, wantCode: http.StatusBadRequest},
		{
			name: "duplicate level", body: []byte(`{"level": "BEGINNER", "attendance_days": ["friday"]}`), token: env.adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"level": course.ErrLevelExists.Error()}),
		},
		{name: "valid", body: []byte(`{"level": "ADVANCED", "attendance_days": ["Thursday", "monday", "thursday"]}`), token: env.adminToken, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method, tt.path = http.MethodPost, path
			rec := env.serve(tt)
			checkCodeAndData(t, tt, rec)
			if tt.wantCode == http.StatusCreated {
				var lvl course.CourseLevel
				unmarshalBody(t, rec, &lvl)
				assert.Equal(t, course.LevelAdvanced, lvl.Level)
				assert.Equal(t, course.Weekdays{course.Monday, course.Thursday}, lvl.AttendanceDays)
				assert.Equal(t, "Karate", lvl.CourseName)
			}
		})
	}
}

func Test_courseApi_delete(t *testing.T) {
	env := setup(t)
	crs := testutil.CreateCourse(t, env.courseRepo, "Karate")
	lvl := testutil.CreateLevel(t, env.courseRepo, crs.ID, course.LevelBeginner, course.Monday)

	tests := []httpTest{
		{name: "admin required", path: "/v1/courses/" + crs.ID, token: env.coachToken, wantCode: http.StatusForbidden},
		{name: "unknown", path: "/v1/courses/nope", token: env.adminToken, wantCode: http.StatusNotFound},
		{name: "valid", path: "/v1/courses/" + crs.ID, token: env.adminToken, wantCode: http.StatusNoContent},
		{name: "levels are gone", method: http.MethodGet, path: "/v1/course-levels/" + lvl.ID, token: env.adminToken, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.method == "" {
				tt.method = http.MethodDelete
			}
			checkCodeAndData(t, tt, env.serve(tt))
		})
	}
}
