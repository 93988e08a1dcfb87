package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/staff"
)

// addUser creates a staff user. An existing user with the same username or email
// gets the new password instead and is reactivated.
func (cli *commandLine) addUser(nu staff.NewUser, owner bool) error {
	ctx := context.Background()

	lookup := nu.Username
	if lookup == "" {
		lookup = nu.Email
	}
	usr, err := cli.staffSvc.GetByUsernameOrEmail(ctx, lookup)
	switch {
	case err == nil:
		if usr, err = cli.staffSvc.ResetPassword(ctx, usr, staff.ResetPassword{
			Password:        nu.Password,
			PasswordConfirm: nu.PasswordConfirm,
		}); err != nil {
			return err
		}
	case errors.Cause(err) == staff.ErrNotFound:
		if owner {
			nu.Roles = []string{staff.RoleAdminOwner}
		}
		if usr, err = cli.staffSvc.Create(ctx, nu); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "created %s\n", usr.Name)
	default:
		return err
	}

	switch {
	case owner:
		_, err = cli.staffSvc.PromoteOwner(ctx, usr)
	case !usr.IsActive:
		_, err = cli.staffSvc.Reactivate(ctx, usr)
	}
	return err
}
