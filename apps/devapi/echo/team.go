package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core/message"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/team"
)

type teamApi struct {
	svc      *team.Service
	messages *message.Service
	validate *validator.Validate
}

func registerTeamAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, deps ServerDeps) {
	api := teamApi{svc: deps.TeamSvc, messages: deps.MessageSvc, validate: deps.Validate}
	authed := []echo.MiddlewareFunc{jwt, claimsMiddleware(auth)}

	tg := g.Group("/team", authed...)
	tg.GET("/get/list", api.list)
	tg.GET("/get/list/:course", api.list)

	pg := g.Group("/progress", authed...)
	pg.GET("/get/grade/:teamId", api.grades)
	pg.POST("/edit/grade", api.editGrades, rolesMiddleware(role.Tutor, role.Coordinator, role.Administrator))
}

func (api *teamApi) list(ctx echo.Context) error {
	teams, err := api.svc.List(ctx.Param("course"))
	if err != nil {
		return errors.Wrap(err, "listing teams")
	}
	items := make([]team.ListItem, 0, len(teams))
	for _, t := range teams {
		items = append(items, t.ListItem())
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *teamApi) grades(ctx echo.Context) error {
	id, err := intParam(ctx, "teamId")
	if err != nil {
		return err
	}
	grades, err := api.svc.Grades(id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *teamApi) editGrades(ctx echo.Context) error {
	var data team.GradeUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeUpdate")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	t, err := api.svc.EditGrades(data)
	if err != nil {
		return err
	}
	if err := api.messages.Notify(data.Notification); err != nil {
		return errors.Wrap(err, "notifying grade change")
	}
	return ctx.JSON(http.StatusOK, t.Grades())
}
