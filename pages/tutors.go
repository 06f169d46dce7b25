package pages

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/project"
	"github.com/trezcool/capstone/core/user"
	"github.com/trezcool/capstone/gateway"
	"github.com/trezcool/capstone/listview"
	"github.com/trezcool/capstone/modal"
)

var errSameTutor = core.NewValidationError(errors.New("this tutor is already assigned to the project"))

// TutorAssign picks the tutor of one project.
type TutorAssign struct {
	Tutors *listview.Controller[user.ListItem]
	Assign *modal.Workflow[user.ListItem, struct{}]

	mu      sync.Mutex
	project project.Detail
}

// NewTutorAssign manages the tutor of p. reload refreshes the page showing p.
func NewTutorAssign(d Deps, p project.Detail, reload func(ctx context.Context)) *TutorAssign {
	ta := &TutorAssign{
		project: p,
		Tutors: listview.New[user.ListItem](
			listview.Endpoint[user.ListItem](d.API, d.Session, func() string { return "v1/admin/get/tutor/list" }),
			func(u user.ListItem) []string { return []string{u.UserName, u.Email} },
		),
	}
	refresh := func(ctx context.Context) {
		ta.Tutors.Reload(ctx)
		if reload != nil {
			reload(ctx)
		}
	}
	ta.Assign = modal.New[user.ListItem, struct{}](d.API, refresh, modal.Options[user.ListItem, struct{}]{
		Validate: func(u user.ListItem, _ struct{}) error {
			if !ta.Assignable(u) {
				return errSameTutor
			}
			return nil
		},
		Build: func(_ context.Context, u user.ListItem, _ struct{}) (gateway.Request, error) {
			p := ta.Project()
			return d.request(http.MethodPost, "v1/admin/change/project/tutor", project.TutorChange{
				ProjectID:    p.ProjectID,
				TutorID:      u.UserID,
				Notification: core.NotifyUsers("You have been assigned to tutor the project "+p.Title+".", u.UserID),
			}), nil
		},
		OnSuccess: func(_ context.Context, u user.ListItem, _ struct{}, _ gateway.Payload) error {
			ta.mu.Lock()
			defer ta.mu.Unlock()
			ta.project.TutorID, ta.project.TutorName, ta.project.TutorEmail = u.UserID, u.UserName, u.Email
			return nil
		},
		SuccessMessage: "Tutor assigned successfully",
	})
	return ta
}

func (ta *TutorAssign) Project() project.Detail {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	return ta.project
}

// Assignable reports whether u is not the project's current tutor.
func (ta *TutorAssign) Assignable(u user.ListItem) bool {
	return u.UserID != ta.Project().TutorID
}
