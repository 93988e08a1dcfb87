package staff_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/staff"
	"github.com/trezcool/mahudhurio/storage/database/dummy"
	"github.com/trezcool/mahudhurio/testutil"
)

func setup(t *testing.T) (*staff.Service, staff.Repository) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewStaffRepository(db)
	validate, _ := testutil.NewValidator()
	return staff.NewService(repo, validate), repo
}

func TestService_Create_passwordPolicy(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	newUser := func(pwd string) staff.NewUser {
		return staff.NewUser{Name: "Coach Kito", Username: "kitokito", Password: pwd, PasswordConfirm: pwd}
	}

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "Ab1!", wantTag: "pwdminlen"},
		{name: "whitespace", pwd: "Abcd 1234!", wantTag: "pwdnospace"},
		{name: "all numeric", pwd: "1234567890", wantTag: "pwdnotallnum"},
		{name: "not complex", pwd: "abcdefgh1", wantTag: "pwdcplx"},
		{name: "similar to username", pwd: "Kitokito1!", wantTag: "pwdtoosim"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, newUser(tt.pwd))
			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs))
			assert.Equal(t, tt.wantTag, vErrs[0].Tag())
		})
	}

	usr, err := svc.Create(ctx, newUser("Tr4ck&Field!"))
	require.NoError(t, err)
	assert.Equal(t, []string{staff.RoleCoach}, usr.Roles)
	assert.True(t, usr.IsActive)
	assert.False(t, usr.IsAdmin())
}

func TestService_Create_uniqueness(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, repo, "Coach Kito", "kito", "kito@test.cd", "", []string{staff.RoleCoach}, true)

	_, err := svc.Create(ctx, staff.NewUser{Name: "Other", Username: "KITO", Password: "Tr4ck&Field!", PasswordConfirm: "Tr4ck&Field!"})
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "username", vErr.Fields[0].Field)

	_, err = svc.Create(ctx, staff.NewUser{Name: "Other", Email: "kito@test.cd", Password: "Tr4ck&Field!", PasswordConfirm: "Tr4ck&Field!"})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "email", vErr.Fields[0].Field)

	_, err = svc.Create(ctx, staff.NewUser{Name: "Other", Password: "Tr4ck&Field!", PasswordConfirm: "Tr4ck&Field!"})
	assert.IsType(t, validator.ValidationErrors{}, err)

	_, err = svc.Create(ctx, staff.NewUser{Name: "Other", Username: "other", Password: "Tr4ck&Field!", PasswordConfirm: "Tr4ck&Field!", Roles: []string{"boss:"}})
	assert.IsType(t, validator.ValidationErrors{}, err)
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	active := testutil.CreateUser(t, repo, "Coach Kito", "kito", "kito@test.cd", "Tr4ck&Field!", []string{staff.RoleCoach}, true)
	testutil.CreateUser(t, repo, "Gone", "gone", "gone@test.cd", "Tr4ck&Field!", nil, false)

	tests := []struct {
		name    string
		creds   staff.LoginCredentials
		wantErr error
	}{
		{name: "by username", creds: staff.LoginCredentials{Username: "KITO ", Password: "Tr4ck&Field!"}},
		{name: "by email", creds: staff.LoginCredentials{Username: "kito@test.cd", Password: "Tr4ck&Field!"}},
		{name: "wrong password", creds: staff.LoginCredentials{Username: "kito", Password: "nope"}, wantErr: staff.ErrInvalidCredentials},
		{name: "unknown user", creds: staff.LoginCredentials{Username: "nobody", Password: "Tr4ck&Field!"}, wantErr: staff.ErrInvalidCredentials},
		{name: "inactive user", creds: staff.LoginCredentials{Username: "gone", Password: "Tr4ck&Field!"}, wantErr: staff.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Authenticate(ctx, tt.creds)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, active.ID, usr.ID)
		})
	}
}

func TestService_ResetPassword(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Coach Kito", "kito", "kito@test.cd", "Tr4ck&Field!", nil, true)

	_, err := svc.ResetPassword(ctx, usr, staff.ResetPassword{Password: "short", PasswordConfirm: "short"})
	assert.IsType(t, validator.ValidationErrors{}, err)

	usr, err = svc.ResetPassword(ctx, usr, staff.ResetPassword{Password: "N3w-Passw0rd", PasswordConfirm: "N3w-Passw0rd"})
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("N3w-Passw0rd"))

	usr, err = svc.SetLastLogin(ctx, usr)
	require.NoError(t, err)
	assert.NotNil(t, usr.LastLogin)
}
