package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mahudhurio/apps"
	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/payment"
	"github.com/trezcool/mahudhurio/core/staff"
	appfs "github.com/trezcool/mahudhurio/fs"
	emailsvc "github.com/trezcool/mahudhurio/services/email"
	"github.com/trezcool/mahudhurio/storage/database/dummy"
	"github.com/trezcool/mahudhurio/testutil"
)

type cliEnv struct {
	cli       *commandLine
	db        *dummydb.DB
	staffRepo staff.Repository
	mailSvc   *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) cliEnv {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	validate, _ := testutil.NewValidator()
	core.ParseEmailTemplates(appfs.FS, conf, logger)

	db, err := dummydb.Open()
	require.NoError(t, err)

	env := cliEnv{
		db:        db,
		staffRepo: dummydb.NewStaffRepository(db),
		mailSvc:   emailsvc.NewConsoleServiceMock(conf),
	}
	env.cli = &commandLine{
		staffSvc: staff.NewService(env.staffRepo, validate),
		paymentSvc: payment.NewService(
			dummydb.NewPaymentRepository(db),
			dummydb.NewPaymentReportRepository(db),
			dummydb.NewCourseRepository(db),
			env.mailSvc,
			validate,
			conf,
			logger,
		),
		out: io.Discard,
	}
	return env
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, errors.Cause(err))
	case tt.wantErrStr != "":
		require.Error(t, err)
		assert.Equal(t, tt.wantErrStr, err.Error())
	default:
		assert.NoError(t, err)
	}
}

// mockPassword makes the terminal prompt answer `pwd` (and `confirm`, when given).
func mockPassword(pwd string, confirm ...string) {
	calls := 0
	readPasswordFunc = func(fd int) ([]byte, error) {
		calls++
		if calls%2 == 0 && len(confirm) > 0 {
			return []byte(confirm[0]), nil
		}
		return []byte(pwd), nil
	}
}

func Test_commandLine_help(t *testing.T) {
	env := setup(t)
	var out bytes.Buffer
	env.cli.out = &out

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate without subcommand", args: []string{"migrate"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			checkErr(t, tt, env.cli.run(append([]string{"admin"}, tt.args...)))
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	env := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		if dir != "migrations" {
			return fmt.Errorf("unexpected migrations dir %q", dir)
		}
		return nil
	}

	tests := []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "guardian", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, env.cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	gone := testutil.CreateUser(t, env.staffRepo, "Gone", "gone", "gone@test.cd", "Tr4ck&Field!", []string{staff.RoleCoach}, false)

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no username nor email", args: []string{"adduser", "-name", "Juma"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-name", "Juma", "-username", "juma"}, extra: "", wantErr: errHelp},
		{name: "weak password", args: []string{"adduser", "-name", "Juma", "-username", "juma"}, extra: "juma1234"},
		{name: "owner", args: []string{"adduser", "-name", "Juma", "-username", "juma", "-owner"}, extra: "Tr4ck&Field!"},
		{name: "reactivate existing", args: []string{"adduser", "-name", "Gone", "-email", "GONE@test.cd"}, extra: "N3w&Secret!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pwd, _ := tt.extra.(string)
			mockPassword(pwd)
			err := env.cli.run(append([]string{"admin"}, tt.args...))
			if tt.name == "weak password" {
				assert.IsType(t, validator.ValidationErrors{}, errors.Cause(err))
				return
			}
			checkErr(t, tt, err)
		})
	}

	owner, err := env.staffRepo.GetUser(ctx, staff.GetFilter{Username: "juma"})
	require.NoError(t, err)
	assert.Equal(t, []string{staff.RoleAdminOwner}, owner.Roles)
	assert.True(t, owner.IsActive)
	assert.NoError(t, owner.CheckPassword("Tr4ck&Field!"))

	back, err := env.staffRepo.GetUser(ctx, staff.GetFilter{ID: gone.ID})
	require.NoError(t, err)
	assert.True(t, back.IsActive)
	assert.NoError(t, back.CheckPassword("N3w&Secret!"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	env := setup(t)
	usr := testutil.CreateUser(t, env.staffRepo, "Coach Kito", "kito", "kito@test.cd", "Tr4ck&Field!", nil, true)

	type extra struct {
		pwd, confirm string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "kito"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "N3w&Secret!"}, wantErr: staff.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "N3w&Secret!"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "An0ther&One"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, _ := tt.extra.(extra)
			if ex.confirm == "" {
				mockPassword(ex.pwd)
			} else {
				mockPassword(ex.pwd, ex.confirm)
			}

			err := env.cli.run(append([]string{"admin"}, tt.args...))
			checkErr(t, tt, err)
			if err == nil {
				refreshed, err := env.staffRepo.GetUser(context.Background(), staff.GetFilter{ID: usr.ID})
				require.NoError(t, err)
				assert.NoError(t, refreshed.CheckPassword(ex.pwd))
			}
		})
	}

	t.Run("confirmation mismatch", func(t *testing.T) {
		mockPassword("N3w&Secret!", "N0pe&Secret!")
		err := env.cli.run([]string{"admin", "resetpassword", "-username", "kito"})
		assert.IsType(t, validator.ValidationErrors{}, errors.Cause(err))
	})
}

func Test_commandLine_remindPayments(t *testing.T) {
	env := setup(t)
	courseRepo := dummydb.NewCourseRepository(env.db)
	studentRepo := dummydb.NewStudentRepository(env.db)
	paymentRepo := dummydb.NewPaymentRepository(env.db)

	crs := testutil.CreateCourse(t, courseRepo, "Swimming")
	lvl := testutil.CreateLevel(t, courseRepo, crs.ID, course.LevelBeginner, course.Saturday)
	std := testutil.CreateStudent(t, studentRepo, "Amina", "Bakari", "mama.amina@test.cd")
	testutil.Enroll(t, studentRepo, std.ID, lvl.ID)
	_, err := paymentRepo.UpsertPayment(context.Background(), payment.Payment{
		StudentID:     std.ID,
		CourseID:      crs.ID,
		CourseLevelID: lvl.ID,
		Month:         5,
		Year:          2024,
		Status:        payment.StatusPending,
	})
	require.NoError(t, err)

	tests := []cliTest{
		{name: "no month", args: []string{"remindpayments", "-year", "2024"}},
		{name: "month 13", args: []string{"remindpayments", "-month", "13", "-year", "2024"}},
		{name: "valid", args: []string{"remindpayments", "-month", "5", "-year", "2024"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.cli.run(append([]string{"admin"}, tt.args...))
			if tt.name == "valid" {
				assert.NoError(t, err)
				return
			}
			var argErr *apps.ArgumentError
			assert.True(t, errors.As(err, &argErr), "want an ArgumentError, got %v", err)
		})
	}

	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "mama.amina@test.cd", sent[0].To[0].Address)
}
