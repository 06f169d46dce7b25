package echoapi

import (
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/message"
	"github.com/trezcool/capstone/core/project"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/team"
	"github.com/trezcool/capstone/core/user"
)

const maxSpecSize = 10 << 20

type (
	projectApi struct {
		svc      *project.Service
		users    *user.Service
		teams    *team.Service
		messages *message.Service
		files    FileStore
		validate *validator.Validate
	}

	successResponse struct {
		Success bool `json:"success"`
	}

	messageResponse struct {
		Message string `json:"message"`
	}

	specUploaded struct {
		Msg     string `json:"msg"`
		FileURL string `json:"fileURL"`
	}
)

func registerProjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, deps ServerDeps) {
	api := projectApi{
		svc:      deps.ProjectSvc,
		users:    deps.UserSvc,
		teams:    deps.TeamSvc,
		messages: deps.MessageSvc,
		files:    deps.Files,
		validate: deps.Validate,
	}
	authed := []echo.MiddlewareFunc{jwt, claimsMiddleware(auth)}
	managers := rolesMiddleware(role.Coordinator, role.Administrator)

	pg := g.Group("/project", authed...)
	pg.POST("/create", api.create, managers)
	pg.GET("/get/public_project/list", api.publicList)
	pg.GET("/detail/:projectId", api.detail)
	pg.DELETE("/delete/:projectId", api.delete, managers)
	pg.POST("/modify/:projectId", api.modify, managers)
	pg.GET("/get/list/byRole/:userId", api.byRole, selfOrRolesMiddleware(role.Coordinator, role.Administrator))
	pg.GET("/get/archived/list", api.archivedList)
	pg.GET("/archive/:projectId", api.archive, managers)
	pg.POST("/upload/spec/:projectId", api.uploadSpec, rolesMiddleware(role.Client, role.Coordinator, role.Administrator))
	pg.GET("/statistics", api.statistics, managers)

	adm := g.Group("/admin", authed...)
	adm.POST("/change/project/tutor", api.changeTutor, managers)
}

// draft reads the multipart project form.
func (api *projectApi) draft(ctx echo.Context) (project.Draft, error) {
	d := project.Draft{
		Title:          ctx.FormValue("title"),
		Field:          ctx.FormValue("field"),
		Description:    ctx.FormValue("description"),
		ClientEmail:    ctx.FormValue("email"),
		RequiredSkills: []string{},
	}
	if form, err := ctx.MultipartForm(); err == nil {
		d.RequiredSkills = append(d.RequiredSkills, form.Value["requiredSkills[]"]...)
	}
	if mt := ctx.FormValue("maxTeams"); mt != "" {
		n, err := strconv.Atoi(mt)
		if err != nil {
			return project.Draft{}, core.NewValidationError(err, core.FieldError{Field: "maxTeams", Error: "maxTeams must be a number"})
		}
		d.MaxTeams = n
	}
	return d, nil
}

// attachment stores the optional "file" part and returns its URL.
func (api *projectApi) attachment(ctx echo.Context) (string, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", errors.Wrap(err, "reading form file")
	}
	if fh.Size > maxSpecSize {
		return "", core.NewValidationError(errors.New("file is too large"), core.FieldError{Field: "file", Error: "file is too large"})
	}
	f, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening form file")
	}
	defer f.Close()

	content, err := ioutil.ReadAll(f)
	if err != nil {
		return "", errors.Wrap(err, "reading form file")
	}
	return api.files.Save(fh.Filename, content), nil
}

func (api *projectApi) resolve(p project.Project) project.Detail {
	return p.Detail(
		func(id int) (user.User, bool) {
			if id == 0 {
				return user.User{}, false
			}
			u, err := api.users.GetByID(id)
			return u, err == nil
		},
		func(id int) (team.Team, bool) {
			t, err := api.teams.GetByID(id)
			return t, err == nil
		},
	)
}

func (api *projectApi) details(projects []project.Project) []project.Detail {
	out := make([]project.Detail, 0, len(projects))
	for _, p := range projects {
		out = append(out, api.resolve(p))
	}
	return out
}

func (api *projectApi) create(ctx echo.Context) error {
	d, err := api.draft(ctx)
	if err != nil {
		return err
	}
	if err := d.Validate(api.validate); err != nil {
		return err
	}

	claims := contextClaims(ctx)
	p, err := api.svc.Create(d, claims.UserID)
	if err != nil {
		return err
	}
	link, err := api.attachment(ctx)
	if err != nil {
		return err
	}
	if link != "" {
		if p, err = api.svc.AttachSpec(p.ID, link); err != nil {
			return errors.Wrap(err, "attaching spec")
		}
	}
	return ctx.JSON(http.StatusCreated, project.Created{
		Msg:       "Project created successfully",
		ProjectID: p.ID,
		FileURL:   p.SpecLink,
		CreatedBy: claims.UserID,
	})
}

func (api *projectApi) modify(ctx echo.Context) error {
	id, err := intParam(ctx, "projectId")
	if err != nil {
		return err
	}
	d, err := api.draft(ctx)
	if err != nil {
		return err
	}
	d.Clean()
	if d.ClientEmail != "" {
		if err := api.validate.Var(d.ClientEmail, "email"); err != nil {
			return err
		}
	}

	p, err := api.svc.Modify(id, d)
	if err != nil {
		return err
	}
	link, err := api.attachment(ctx)
	if err != nil {
		return err
	}
	if link != "" {
		if p, err = api.svc.AttachSpec(p.ID, link); err != nil {
			return errors.Wrap(err, "attaching spec")
		}
	}
	return ctx.JSON(http.StatusOK, api.resolve(p))
}

func (api *projectApi) publicList(ctx echo.Context) error {
	projects, err := api.svc.Public()
	if err != nil {
		return errors.Wrap(err, "querying public projects")
	}
	return ctx.JSON(http.StatusOK, api.details(projects))
}

func (api *projectApi) archivedList(ctx echo.Context) error {
	projects, err := api.svc.Archived()
	if err != nil {
		return errors.Wrap(err, "querying archived projects")
	}
	return ctx.JSON(http.StatusOK, api.details(projects))
}

func (api *projectApi) byRole(ctx echo.Context) error {
	id, err := intParam(ctx, "userId")
	if err != nil {
		return err
	}
	usr, err := api.users.GetByID(id)
	if err != nil {
		return err
	}
	projects, err := api.svc.ByRole(usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.details(projects))
}

func (api *projectApi) detail(ctx echo.Context) error {
	id, err := intParam(ctx, "projectId")
	if err != nil {
		return err
	}
	p, err := api.svc.GetByID(id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.resolve(p))
}

func (api *projectApi) delete(ctx echo.Context) error {
	id, err := intParam(ctx, "projectId")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, successResponse{Success: true})
}

func (api *projectApi) archive(ctx echo.Context) error {
	id, err := intParam(ctx, "projectId")
	if err != nil {
		return err
	}
	if _, err := api.svc.Archive(id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: "Project archived successfully"})
}

func (api *projectApi) uploadSpec(ctx echo.Context) error {
	id, err := intParam(ctx, "projectId")
	if err != nil {
		return err
	}
	if _, err := api.svc.GetByID(id); err != nil {
		return err
	}
	link, err := api.attachment(ctx)
	if err != nil {
		return err
	}
	if link == "" {
		return core.NewValidationError(errors.New("file is required"), core.FieldError{Field: "file", Error: "file is required"})
	}
	if _, err := api.svc.AttachSpec(id, link); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, specUploaded{Msg: "Specification uploaded successfully", FileURL: link})
}

func (api *projectApi) statistics(ctx echo.Context) error {
	stats, err := api.svc.Statistics()
	if err != nil {
		return errors.Wrap(err, "computing statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *projectApi) changeTutor(ctx echo.Context) error {
	var data project.TutorChange
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TutorChange")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	p, err := api.svc.ChangeTutor(data)
	if err != nil {
		return err
	}
	if err := api.messages.Notify(data.Notification); err != nil {
		return errors.Wrap(err, "notifying tutor change")
	}
	return ctx.JSON(http.StatusOK, api.resolve(p))
}
