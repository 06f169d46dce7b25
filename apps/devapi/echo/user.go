package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core/message"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/user"
)

type (
	userApi struct {
		svc        *user.Service
		messages   *message.Service
		auth       *authenticator
		validate   *validator.Validate
		translator ut.Translator
	}

	msgResponse struct {
		Msg string `json:"msg"`
	}

	registration struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	passwordReset struct {
		Email    string `json:"email"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}

	passwordChange struct {
		UserID      int    `json:"userId" validate:"required"`
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,pwdpolicy"`
	}
)

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, deps ServerDeps) {
	api := userApi{
		svc:        deps.UserSvc,
		messages:   deps.MessageSvc,
		auth:       auth,
		validate:   deps.Validate,
		translator: deps.Translator,
	}
	authed := []echo.MiddlewareFunc{jwt, claimsMiddleware(auth)}

	ug := g.Group("/user")

	// un-authed endpoints
	ug.POST("/pwd_login", api.login)
	ug.POST("/register/send_email", api.register)
	ug.POST("/forget_password/send_email", api.forgotPassword)
	ug.POST("/reset/password", api.resetPassword)

	// authed endpoints
	ag := ug.Group("", authed...)
	ag.POST("/change_password", api.changePassword)
	ag.GET("/profile/:userId", api.profile)
	ag.GET("/student/list", api.studentList)
	ag.GET("/get/user/list", api.userList, rolesMiddleware(role.Administrator, role.Coordinator))

	adm := g.Group("/admin", authed...)
	adm.GET("/get/tutor/list", api.tutorList, rolesMiddleware(role.Administrator, role.Coordinator))
	adm.POST("/modify/user/role", api.modifyRole, rolesMiddleware(role.Administrator))

	sg := g.Group("/student", authed...)
	sg.GET("/unassigned/list", api.unassignedStudents)
	sg.GET("/unassigned/list/:course", api.unassignedStudents)
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(data)
	if err != nil {
		return err
	}
	token, err := api.auth.GenerateToken(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, user.LoginResponse{
		Token:     token,
		UserID:    usr.ID,
		Role:      usr.Role,
		UserName:  usr.Name,
		Email:     usr.Email,
		AvatarURL: usr.AvatarURL,
	})
}

// register creates the student account right away: there is no e-mail verification in development.
func (api *userApi) register(ctx echo.Context) error {
	var data registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to registration")
	}
	nu := user.NewUser{Email: data.Email, Password: data.Password, PasswordConfirm: data.Password}
	if err := nu.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Register(nu); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, msgResponse{Msg: "Registration successful"})
}

func (api *userApi) forgotPassword(ctx echo.Context) error {
	var data user.ForgotPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ForgotPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(data.Email); err != nil {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, msgResponse{
		Msg: "If the email address supplied is associated with an account, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data passwordReset
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to passwordReset")
	}
	rp := user.ResetPassword{Email: data.Email, Token: data.Token, Password: data.Password, PasswordConfirm: data.Password}
	if err := rp.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(rp); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, msgResponse{Msg: "Password has been reset with the new password."})
}

func (api *userApi) changePassword(ctx echo.Context) error {
	var data passwordChange
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to passwordChange")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	if data.UserID != contextClaims(ctx).UserID {
		return errHttpForbidden
	}

	cp := user.ChangePassword{UserID: data.UserID, OldPassword: data.OldPassword, NewPassword: data.NewPassword}
	if err := api.svc.ChangePassword(cp); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, msgResponse{Msg: "Password changed successfully"})
}

func (api *userApi) profile(ctx echo.Context) error {
	id, err := intParam(ctx, "userId")
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr.Profile())
}

func (api *userApi) userList(ctx echo.Context) error {
	users, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	items := make([]user.ListItem, 0, len(users))
	for _, u := range users {
		items = append(items, u.ListItem())
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *userApi) tutorList(ctx echo.Context) error {
	tutors, err := api.svc.Filter(user.QueryFilter{Roles: []role.ID{role.Tutor}})
	if err != nil {
		return errors.Wrap(err, "filtering tutors")
	}
	items := make([]user.ListItem, 0, len(tutors))
	for _, u := range tutors {
		items = append(items, u.ListItem())
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *userApi) studentList(ctx echo.Context) error {
	return api.students(ctx, user.QueryFilter{Roles: []role.ID{role.Student}})
}

func (api *userApi) unassignedStudents(ctx echo.Context) error {
	return api.students(ctx, user.QueryFilter{
		Roles:      []role.ID{role.Student},
		Course:     ctx.Param("course"),
		Unassigned: true,
	})
}

func (api *userApi) students(ctx echo.Context, filter user.QueryFilter) error {
	students, err := api.svc.Filter(filter)
	if err != nil {
		return errors.Wrap(err, "filtering students")
	}
	items := make([]user.Student, 0, len(students))
	for _, u := range students {
		items = append(items, u.Student())
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *userApi) modifyRole(ctx echo.Context) error {
	var data user.RoleChange
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RoleChange")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	if _, err := api.svc.SetRole(data.UserID, data.Role); err != nil {
		return err
	}
	if err := api.messages.Notify(data.Notification); err != nil {
		return errors.Wrap(err, "notifying role change")
	}
	return ctx.JSON(http.StatusOK, msgResponse{Msg: "User role updated successfully"})
}
