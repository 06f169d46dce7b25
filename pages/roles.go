package pages

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/session"
	"github.com/trezcool/capstone/core/user"
	"github.com/trezcool/capstone/gateway"
	"github.com/trezcool/capstone/listview"
	"github.com/trezcool/capstone/modal"
)

var errSelectRole = core.NewValidationError(errors.New("please select a role"))

type RoleEdit struct {
	Role role.ID
}

// RoleManager lists every user and assigns roles.
type RoleManager struct {
	Users  *listview.Controller[user.ListItem]
	Assign *modal.Workflow[user.ListItem, RoleEdit]
}

func userFields(u user.ListItem) []string {
	return []string{itoa(u.UserID), u.UserName, u.Email}
}

func NewRoleManager(d Deps, writer *session.Writer) *RoleManager {
	rm := &RoleManager{
		Users: listview.New[user.ListItem](
			listview.Endpoint[user.ListItem](d.API, d.Session, func() string { return "v1/user/get/user/list" }),
			userFields,
		),
	}
	rm.Assign = modal.New[user.ListItem, RoleEdit](d.API, rm.Users.Reload, modal.Options[user.ListItem, RoleEdit]{
		Prefill: func(u user.ListItem) RoleEdit { return RoleEdit{Role: u.Role} },
		Validate: func(_ user.ListItem, e RoleEdit) error {
			if !e.Role.Valid() {
				return errSelectRole
			}
			return nil
		},
		Build: func(_ context.Context, u user.ListItem, e RoleEdit) (gateway.Request, error) {
			return d.request(http.MethodPost, "v1/admin/modify/user/role", user.RoleChange{
				UserID:       u.UserID,
				Role:         e.Role,
				Notification: core.NotifyUsers("Your role has been changed to "+e.Role.String()+".", u.UserID),
			}), nil
		},
		OnSuccess: func(_ context.Context, u user.ListItem, e RoleEdit, _ gateway.Payload) error {
			if u.UserID != d.Session.UserID() || writer == nil {
				return nil
			}
			return errors.Wrap(writer.SetRole(e.Role), "role updated but the session could not be saved")
		},
		SuccessMessage: "Role updated successfully",
	})
	return rm
}
