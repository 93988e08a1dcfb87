package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/payment"
)

type paymentApi struct {
	svc *payment.Service
}

type RemindResponse struct {
	Sent int `json:"sent"`
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *payment.Service) {
	api := paymentApi{svc: svc}

	g.GET("/course-levels/:id/payments", api.controlSheet, jwt)
	g.PUT("/course-levels/:id/payments", api.upsertBatch, jwt)

	pg := g.Group("/payments", jwt)
	pg.PUT("", api.upsert)
	pg.GET("/pending", api.queryPending, adminMiddleware())
	pg.POST("/reminders", api.remind, adminMiddleware())
	pg.GET("/:id", api.retrieve)
}

func (api *paymentApi) controlSheet(ctx echo.Context) error {
	period, err := bindPeriod(ctx)
	if err != nil {
		return err
	}
	rows, err := api.svc.ControlSheet(ctx.Request().Context(), ctx.Param("id"), period)
	if err != nil {
		return errors.Wrap(err, "building control sheet")
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *paymentApi) upsertBatch(ctx echo.Context) error {
	var data payment.UpsertBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertBatch")
	}
	data.CourseLevelID = ctx.Param("id")

	res, err := api.svc.UpsertBatch(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "upserting payments")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *paymentApi) upsert(ctx echo.Context) error {
	var data payment.UpsertPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertPayment")
	}
	pmt, err := api.svc.UpsertPayment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "upserting payment")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	pmt, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting payment")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) queryPending(ctx echo.Context) error {
	period, err := bindPeriod(ctx)
	if err != nil {
		return err
	}
	pending, err := api.svc.ListPending(ctx.Request().Context(), period)
	if err != nil {
		return errors.Wrap(err, "listing pending payments")
	}
	return ctx.JSON(http.StatusOK, pending)
}

func (api *paymentApi) remind(ctx echo.Context) error {
	var period payment.Period
	if err := ctx.Bind(&period); err != nil {
		return errors.Wrap(err, "binding to Period")
	}
	sent, err := api.svc.RemindPending(ctx.Request().Context(), period)
	if err != nil {
		return errors.Wrap(err, "sending payment reminders")
	}
	return ctx.JSON(http.StatusOK, RemindResponse{Sent: sent})
}
