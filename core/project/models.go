package project

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/team"
	"github.com/trezcool/capstone/core/user"
)

// Fields are the project fields known to the platform, in display order.
var Fields = []string{
	"Artificial Intelligence",
	"Data Science",
	"Cyber Security",
	"Software Engineering",
	"Network Engineering",
	"Human-Computer Interaction",
	"Cloud Computing",
	"Information Systems",
	"Machine Learning",
	"Blockchain",
	"Other",
}

func KnownField(field string) bool {
	for _, f := range Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Project is the record held by the API.
type Project struct {
	ID            int
	Title         string
	Field         string
	Description   string
	SpecLink      string
	MaxTeams      int
	Archived      bool
	ClientID      int
	TutorID       int
	CoordinatorID int
	Skills        []string
	TeamIDs       []int
}

// Detail resolves people and teams of p through the given lookups.
func (p Project) Detail(users func(id int) (user.User, bool), teams func(id int) (team.Team, bool)) Detail {
	d := Detail{
		ProjectID:      p.ID,
		Title:          p.Title,
		Field:          p.Field,
		Description:    p.Description,
		SpecLink:       p.SpecLink,
		MaxTeams:       p.MaxTeams,
		RequiredSkills: append([]string{}, p.Skills...),
		AllocatedTeams: make([]AllocatedTeam, 0, len(p.TeamIDs)),
	}
	if u, ok := users(p.ClientID); ok {
		d.ClientID, d.ClientName, d.ClientEmail, d.ClientAvatarURL = u.ID, u.Name, u.Email, u.AvatarURL
	}
	if u, ok := users(p.TutorID); ok {
		d.TutorID, d.TutorName, d.TutorEmail = u.ID, u.Name, u.Email
	}
	if u, ok := users(p.CoordinatorID); ok {
		d.CoordinatorID, d.CoordinatorName, d.CoordinatorEmail = u.ID, u.Name, u.Email
	}
	for _, id := range p.TeamIDs {
		if t, ok := teams(id); ok {
			d.AllocatedTeams = append(d.AllocatedTeams, AllocatedTeam{TeamID: t.ID, TeamName: t.Name})
		}
	}
	return d
}

type AllocatedTeam struct {
	TeamID   int    `json:"teamId"`
	TeamName string `json:"teamName"`
}

// Detail is a project as listed and shown by the client.
type Detail struct {
	ProjectID        int             `json:"projectId"`
	Title            string          `json:"title"`
	ClientID         int             `json:"clientId"`
	ClientName       string          `json:"clientName"`
	ClientEmail      string          `json:"clientEmail"`
	ClientAvatarURL  string          `json:"clientAvatarURL"`
	TutorID          int             `json:"tutorId"`
	TutorName        string          `json:"tutorName"`
	TutorEmail       string          `json:"tutorEmail"`
	CoordinatorID    int             `json:"coordinatorId"`
	CoordinatorName  string          `json:"coorName"`
	CoordinatorEmail string          `json:"coordinatorEmail"`
	RequiredSkills   []string        `json:"requiredSkills"`
	Field            string          `json:"field"`
	Description      string          `json:"description"`
	SpecLink         string          `json:"specLink"`
	MaxTeams         int             `json:"maxTeams"`
	AllocatedTeams   []AllocatedTeam `json:"allocatedTeam"`
}

// Draft holds the project form, used to create or modify a project.
type Draft struct {
	Title          string   `json:"title" validate:"required"`
	Field          string   `json:"field" validate:"required"`
	Description    string   `json:"description"`
	ClientEmail    string   `json:"email" validate:"required,email"`
	RequiredSkills []string `json:"requiredSkills"`
	MaxTeams       int      `json:"maxTeams" validate:"min=0"`
}

// DraftOf pre-populates a Draft from a project detail.
func DraftOf(d Detail) Draft {
	return Draft{
		Title:          d.Title,
		Field:          d.Field,
		Description:    d.Description,
		ClientEmail:    d.ClientEmail,
		RequiredSkills: append([]string{}, d.RequiredSkills...),
		MaxTeams:       d.MaxTeams,
	}
}

func (d *Draft) Clean() {
	d.Title = core.CleanString(d.Title)
	d.Field = core.CleanString(d.Field)
	d.Description = strings.TrimSpace(d.Description)
	d.ClientEmail = core.CleanString(d.ClientEmail, true /* lower */)
	skills := make([]string, 0, len(d.RequiredSkills))
	for _, s := range d.RequiredSkills {
		if s = core.CleanString(s); s != "" {
			skills = append(skills, s)
		}
	}
	d.RequiredSkills = skills
}

func (d *Draft) Validate(validate *validator.Validate) error {
	d.Clean()
	return validate.Struct(d)
}

// FormValues renders the draft as multipart form values.
func (d Draft) FormValues() map[string][]string {
	return map[string][]string{
		"title":            {d.Title},
		"field":            {d.Field},
		"description":      {d.Description},
		"email":            {d.ClientEmail},
		"maxTeams":         {strconv.Itoa(d.MaxTeams)},
		"requiredSkills[]": d.RequiredSkills,
	}
}

// TutorChange is the body of the change-tutor endpoint.
type TutorChange struct {
	ProjectID    int                  `json:"projectId" validate:"required"`
	TutorID      int                  `json:"tutorId" validate:"required"`
	Notification core.NotificationRef `json:"notification"`
}

// Created is returned by the create endpoint.
type Created struct {
	Msg       string `json:"msg"`
	ProjectID int    `json:"projectId"`
	FileURL   string `json:"fileURL"`
	CreatedBy int    `json:"createdBy"`
}
