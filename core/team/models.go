package team

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core"
)

// Team is a group of students working on one allocated project.
type Team struct {
	ID        int
	Name      string
	Course    string
	TutorID   int
	ProjectID int
	Skills    []string
	Members   []int
	Sprints   []Sprint
}

func (t Team) ListItem() ListItem {
	skills := t.Skills
	if skills == nil {
		skills = []string{}
	}
	return ListItem{TeamID: t.ID, TeamName: t.Name, TeamSkills: skills}
}

func (t Team) Grades() Grades {
	sprints := make([]Sprint, len(t.Sprints))
	copy(sprints, t.Sprints)
	return Grades{TeamID: t.ID, Sprints: sprints}
}

// ListItem is a row of the team list.
type ListItem struct {
	TeamID     int      `json:"teamId"`
	TeamName   string   `json:"teamName"`
	TeamSkills []string `json:"teamSkills"`
}

// Sprint carries the grade of one sprint. A nil Grade has not been graded yet.
type Sprint struct {
	SprintNum int    `json:"sprintNum"`
	Grade     *int   `json:"grade"`
	Comment   string `json:"comment"`
}

type Grades struct {
	TeamID  int      `json:"teamId"`
	Sprints []Sprint `json:"sprints"`
}

// GradeUpdate is the body of the grade edit endpoint.
type GradeUpdate struct {
	TeamID       int                  `json:"teamId" validate:"required"`
	Sprints      []Sprint             `json:"sprints" validate:"required,dive"`
	Notification core.NotificationRef `json:"notification"`
}

// SprintEntry is what the user typed for one sprint.
type SprintEntry struct {
	Grade   string
	Comment string
}

// GradeSheet is the pending edit of the grade modal, keyed on sprint number.
type GradeSheet map[int]SprintEntry

// SheetOf pre-populates a sheet from the current grades.
func SheetOf(g Grades) GradeSheet {
	sheet := make(GradeSheet, len(g.Sprints))
	for _, s := range g.Sprints {
		var entry SprintEntry
		if s.Grade != nil {
			entry.Grade = strconv.Itoa(*s.Grade)
		}
		entry.Comment = s.Comment
		sheet[s.SprintNum] = entry
	}
	return sheet
}

// Sprints converts the sheet into wire sprints ordered by number.
// Every non-empty grade must be an integer between 0 and 100, and a comment needs a grade.
func (gs GradeSheet) Sprints() ([]Sprint, error) {
	nums := make([]int, 0, len(gs))
	for n := range gs {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var flds []core.FieldError
	sprints := make([]Sprint, 0, len(nums))
	for _, n := range nums {
		entry := gs[n]
		field := "sprint" + strconv.Itoa(n)
		s := Sprint{SprintNum: n, Comment: strings.TrimSpace(entry.Comment)}
		if g := strings.TrimSpace(entry.Grade); g != "" {
			val, err := strconv.Atoi(g)
			if err != nil || val < 0 || val > 100 {
				flds = append(flds, core.FieldError{Field: field, Error: "grade for sprint " + strconv.Itoa(n) + " must be a number between 0 and 100"})
				continue
			}
			s.Grade = &val
		} else if s.Comment != "" {
			flds = append(flds, core.FieldError{Field: field, Error: "grade for sprint " + strconv.Itoa(n) + " is required"})
			continue
		}
		sprints = append(sprints, s)
	}
	if len(flds) > 0 {
		return nil, core.NewValidationError(nil, flds...)
	}
	if len(sprints) == 0 {
		return nil, core.NewValidationError(errors.New("no sprint to grade"))
	}
	return sprints, nil
}
