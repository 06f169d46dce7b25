package team

import (
	"errors"
	"fmt"

	"github.com/trezcool/capstone/core"
)

var (
	// errors
	ErrNotFound = errors.New("team not found")
)

type (
	Repository interface {
		CreateTeam(team Team) (Team, error)
		QueryAllTeams() ([]Team, error)
		// FilterTeams returns the teams of a course, every team when course is empty.
		FilterTeams(course string) ([]Team, error)
		GetTeamByID(id int) (Team, error)
		UpdateTeam(team Team) (Team, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(t Team) (Team, error) {
	t.Name = core.CleanString(t.Name)
	t.Course = core.CleanString(t.Course)
	return svc.repo.CreateTeam(t)
}

func (svc *Service) List(course string) ([]Team, error) {
	return svc.repo.FilterTeams(core.CleanString(course))
}

func (svc *Service) GetByID(id int) (Team, error) {
	return svc.repo.GetTeamByID(id)
}

func (svc *Service) Grades(teamID int) (Grades, error) {
	t, err := svc.repo.GetTeamByID(teamID)
	if err != nil {
		return Grades{}, err
	}
	return t.Grades(), nil
}

// EditGrades applies gu onto the team's sprints. Only sprints the team has started can be graded.
func (svc *Service) EditGrades(gu GradeUpdate) (Team, error) {
	t, err := svc.repo.GetTeamByID(gu.TeamID)
	if err != nil {
		return Team{}, err
	}

	idx := make(map[int]int, len(t.Sprints))
	for i, s := range t.Sprints {
		idx[s.SprintNum] = i
	}
	for _, s := range gu.Sprints {
		if _, ok := idx[s.SprintNum]; !ok {
			return Team{}, core.NewValidationError(fmt.Errorf("team has not started sprint %d", s.SprintNum))
		}
		if s.Grade != nil && (*s.Grade < 0 || *s.Grade > 100) {
			return Team{}, core.NewValidationError(fmt.Errorf("invalid grade for sprint %d", s.SprintNum))
		}
	}

	sprints := make([]Sprint, len(t.Sprints))
	copy(sprints, t.Sprints)
	for _, s := range gu.Sprints {
		sprints[idx[s.SprintNum]] = s
	}
	t.Sprints = sprints
	return svc.repo.UpdateTeam(t)
}

// Members returns the student ids of a team.
func (svc *Service) Members(teamID int) ([]int, error) {
	t, err := svc.repo.GetTeamByID(teamID)
	if err != nil {
		return nil, err
	}
	return append([]int(nil), t.Members...), nil
}
