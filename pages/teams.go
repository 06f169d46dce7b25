package pages

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/team"
	"github.com/trezcool/capstone/core/user"
	"github.com/trezcool/capstone/listview"
)

// TeamRoster lists the teams and the students without a team, optionally for one course.
type TeamRoster struct {
	Teams    *listview.Controller[team.ListItem]
	Students *listview.Controller[user.Student]

	mu      sync.Mutex
	course  string
	loading bool
}

func NewTeamRoster(d Deps) *TeamRoster {
	tr := &TeamRoster{}
	tr.Teams = listview.New[team.ListItem](
		listview.Endpoint[team.ListItem](d.API, d.Session, func() string { return withCourse("v1/team/get/list", tr.Course()) }),
		func(t team.ListItem) []string {
			return []string{t.TeamName, strings.Join(t.TeamSkills, " "), itoa(t.TeamID)}
		},
	)
	tr.Students = listview.New[user.Student](
		listview.Endpoint[user.Student](d.API, d.Session, func() string { return withCourse("v1/student/unassigned/list", tr.Course()) }),
		func(s user.Student) []string { return []string{s.UserName, s.Email, itoa(s.UserID)} },
	)
	return tr
}

func withCourse(path, course string) string {
	if course == "" {
		return path
	}
	return path + "/" + url.PathEscape(course)
}

func (tr *TeamRoster) Course() string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.course
}

// Load fetches both lists for the current course.
func (tr *TeamRoster) Load(ctx context.Context) error {
	tr.mu.Lock()
	if tr.busyLocked() {
		tr.mu.Unlock()
		return listview.ErrLoadInFlight
	}
	tr.loading = true
	tr.mu.Unlock()
	defer tr.done()
	return tr.load(ctx)
}

// SetCourse refetches both lists from the server for course. An empty course means every course.
// While either list is loading the course is left unchanged and listview.ErrLoadInFlight is returned.
func (tr *TeamRoster) SetCourse(ctx context.Context, course string) error {
	tr.mu.Lock()
	if tr.busyLocked() {
		tr.mu.Unlock()
		return listview.ErrLoadInFlight
	}
	prev := tr.course
	tr.course = core.CleanString(course)
	tr.loading = true
	tr.mu.Unlock()
	defer tr.done()

	errTeams := tr.Teams.Load(ctx)
	if errors.Is(errTeams, listview.ErrLoadInFlight) {
		tr.mu.Lock()
		tr.course = prev
		tr.mu.Unlock()
		return errTeams
	}
	errStudents := tr.Students.Load(ctx)
	if errTeams != nil {
		return errTeams
	}
	return errStudents
}

func (tr *TeamRoster) load(ctx context.Context) error {
	errTeams := tr.Teams.Load(ctx)
	errStudents := tr.Students.Load(ctx)
	if errTeams != nil {
		return errTeams
	}
	return errStudents
}

func (tr *TeamRoster) busyLocked() bool {
	return tr.loading || tr.Teams.State() == listview.Loading || tr.Students.State() == listview.Loading
}

func (tr *TeamRoster) done() {
	tr.mu.Lock()
	tr.loading = false
	tr.mu.Unlock()
}
