package pages

import (
	"context"
	"net/http"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/team"
	"github.com/trezcool/capstone/gateway"
	"github.com/trezcool/capstone/modal"
)

// GradeEntry shows the sprint grades of a team. Students can only read them.
type GradeEntry struct {
	Modal *modal.Workflow[team.Grades, team.GradeSheet]
	deps  Deps
}

func NewGradeEntry(d Deps, reload func(ctx context.Context)) *GradeEntry {
	return &GradeEntry{
		deps: d,
		Modal: modal.New[team.Grades, team.GradeSheet](d.API, reload, modal.Options[team.Grades, team.GradeSheet]{
			Prefill: team.SheetOf,
			Validate: func(_ team.Grades, sheet team.GradeSheet) error {
				_, err := sheet.Sprints()
				return err
			},
			Build: func(_ context.Context, g team.Grades, sheet team.GradeSheet) (gateway.Request, error) {
				sprints, err := sheet.Sprints()
				if err != nil {
					return gateway.Request{}, err
				}
				return d.request(http.MethodPost, "v1/progress/edit/grade", team.GradeUpdate{
					TeamID:       g.TeamID,
					Sprints:      sprints,
					Notification: core.NotifyTeam("Your team has new sprint grades.", g.TeamID),
				}), nil
			},
			SuccessMessage: "Grades saved successfully",
			ReadOnly:       d.Session.Role() == role.Student,
		}),
	}
}

// Open fetches the grades of teamID and opens the modal on them.
func (ge *GradeEntry) Open(ctx context.Context, teamID int) error {
	var g team.Grades
	if err := ge.deps.get(ctx, "v1/progress/get/grade/"+itoa(teamID), &g); err != nil {
		return err
	}
	return ge.Modal.Open(g)
}

// SetGrade records the grade and comment typed for one sprint.
func (ge *GradeEntry) SetGrade(sprint int, grade, comment string) error {
	return ge.Modal.Edit(func(sheet *team.GradeSheet) {
		if *sheet == nil {
			*sheet = team.GradeSheet{}
		}
		(*sheet)[sprint] = team.SprintEntry{Grade: grade, Comment: comment}
	})
}
