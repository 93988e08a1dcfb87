package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/student"
)

type courseApi struct {
	svc        *course.Service
	studentSvc *student.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service, studentSvc *student.Service) {
	api := courseApi{svc: svc, studentSvc: studentSvc}
	admin := adminMiddleware()

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, admin)
	cg.GET("/levels", api.queryLevelOptions)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, admin)
	cg.DELETE("/:id", api.destroy, admin)
	cg.GET("/:id/levels", api.queryLevels)
	cg.POST("/:id/levels", api.createLevel, admin)

	lg := g.Group("/course-levels", jwt)
	lg.GET("/:id", api.retrieveLevel)
	lg.PUT("/:id", api.updateLevel, admin)
	lg.DELETE("/:id", api.destroyLevel, admin)
	lg.GET("/:id/students", api.queryLevelStudents)
}

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) queryLevelOptions(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, course.Levels)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	crs, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) queryLevels(ctx echo.Context) error {
	levels, err := api.svc.QueryLevels(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying course levels")
	}
	return ctx.JSON(http.StatusOK, levels)
}

func (api *courseApi) createLevel(ctx echo.Context) error {
	var data course.NewCourseLevel
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourseLevel")
	}
	lvl, err := api.svc.CreateLevel(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating course level")
	}
	return ctx.JSON(http.StatusCreated, lvl)
}

func (api *courseApi) retrieveLevel(ctx echo.Context) error {
	lvl, err := api.svc.GetLevel(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course level")
	}
	return ctx.JSON(http.StatusOK, lvl)
}

func (api *courseApi) updateLevel(ctx echo.Context) error {
	var data course.UpdateCourseLevel
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourseLevel")
	}
	lvl, err := api.svc.UpdateLevel(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course level")
	}
	return ctx.JSON(http.StatusOK, lvl)
}

func (api *courseApi) destroyLevel(ctx echo.Context) error {
	if err := api.svc.DeleteLevel(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course level")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) queryLevelStudents(ctx echo.Context) error {
	students, err := api.studentSvc.ListEnrolled(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing enrolled students")
	}
	return ctx.JSON(http.StatusOK, students)
}
