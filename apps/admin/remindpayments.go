package main

import (
	"context"
	"fmt"

	"github.com/kat-co/vala"

	"github.com/trezcool/mahudhurio/apps"
	"github.com/trezcool/mahudhurio/core/payment"
)

func (cli *commandLine) remindPayments(month, year int) error {
	if err := vala.BeginValidation().Validate(
		vala.GreaterThan(month, 0, "month"),
		vala.Not(vala.GreaterThan(month, 12, "month")),
		vala.GreaterThan(year, 0, "year"),
	).Check(); err != nil {
		return apps.NewArgumentError(err.Error())
	}

	period := payment.Period{Month: month, Year: year}
	sent, err := cli.paymentSvc.RemindPending(context.Background(), period)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d reminders sent for %s\n", sent, period)
	return nil
}
