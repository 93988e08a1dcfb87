package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	// no jwt group here: its catch-all route would take over GET /course-levels/:id
	g.GET("/course-levels/:id/eligibility", api.eligibility, jwt)
	g.GET("/course-levels/:id/attendance", api.queryDay, jwt)
	g.POST("/course-levels/:id/attendance", api.record, jwt)
	g.PATCH("/attendance/:id", api.update, jwt)
}

func (api *attendanceApi) eligibility(ctx echo.Context) error {
	date, err := api.svc.ParseDate(ctx.QueryParam("date"))
	if err != nil {
		return err
	}
	elig, err := api.svc.CanTakeAttendance(ctx.Request().Context(), ctx.Param("id"), date)
	if err != nil {
		return errors.Wrap(err, "checking attendance eligibility")
	}
	return ctx.JSON(http.StatusOK, elig)
}

func (api *attendanceApi) queryDay(ctx echo.Context) error {
	date, err := api.svc.ParseDate(ctx.QueryParam("date"))
	if err != nil {
		return err
	}
	recs, err := api.svc.ListForDay(ctx.Request().Context(), ctx.Param("id"), date)
	if err != nil {
		return errors.Wrap(err, "listing attendance")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) record(ctx echo.Context) error {
	var data attendance.RecordAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordAttendance")
	}
	data.CourseLevelID = ctx.Param("id")

	res, err := api.svc.RecordAttendance(ctx.Request().Context(), data, contextStaffID(ctx))
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	var data attendance.UpdateAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAttendance")
	}
	att, err := api.svc.UpdateAttendance(ctx.Request().Context(), ctx.Param("id"), data, contextStaffID(ctx))
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	return ctx.JSON(http.StatusOK, att)
}
