package main

import (
	"context"

	"github.com/trezcool/mahudhurio/core/staff"
)

func (cli *commandLine) resetPassword(uname, pwd, confirm string) error {
	ctx := context.Background()
	usr, err := cli.staffSvc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	_, err = cli.staffSvc.ResetPassword(ctx, usr, staff.ResetPassword{Password: pwd, PasswordConfirm: confirm})
	return err
}
