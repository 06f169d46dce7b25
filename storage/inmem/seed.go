package inmemdb

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core/message"
	"github.com/trezcool/capstone/core/project"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/team"
	"github.com/trezcool/capstone/core/user"
)

// Fixtures are the ids of the seeded records.
type Fixtures struct {
	Admin       user.User
	Coordinator user.User
	Tutor       user.User
	OtherTutor  user.User
	Client      user.User
	Students    []user.User // the first two are in Team, the last one is unassigned
	Team        team.Team
	OtherTeam   team.Team
	Project     project.Project
	Archived    project.Project
	Channel     message.Channel
}

// Seed fills db with a small platform. Every account uses password.
func Seed(db *DB, password string) (Fixtures, error) {
	var fx Fixtures
	users := NewUserRepository(db)
	teams := NewTeamRepository(db)
	projects := NewProjectRepository(db)
	messages := NewMessageRepository(db)
	now := time.Now().UTC()

	mkUser := func(name, email string, r role.ID, course string) (user.User, error) {
		u := user.User{Name: name, Email: email, Role: r, Course: course, Skills: []string{}, CreatedAt: now, UpdatedAt: now}
		if r == role.Student {
			u.Skills = []string{"Go", "SQL"}
		}
		if err := u.SetPassword(password); err != nil {
			return user.User{}, err
		}
		return users.CreateUser(u)
	}

	var err error
	if fx.Admin, err = mkUser("Ada Admin", "admin@capstone.dev", role.Administrator, ""); err != nil {
		return fx, errors.Wrap(err, "seeding admin")
	}
	if fx.Coordinator, err = mkUser("Cory Coordinator", "coordinator@capstone.dev", role.Coordinator, ""); err != nil {
		return fx, errors.Wrap(err, "seeding coordinator")
	}
	if fx.Tutor, err = mkUser("Tia Tutor", "tutor@capstone.dev", role.Tutor, ""); err != nil {
		return fx, errors.Wrap(err, "seeding tutor")
	}
	if fx.OtherTutor, err = mkUser("Tom Tutor", "tutor2@capstone.dev", role.Tutor, ""); err != nil {
		return fx, errors.Wrap(err, "seeding tutor")
	}
	if fx.Client, err = mkUser("Cleo Client", "client@capstone.dev", role.Client, ""); err != nil {
		return fx, errors.Wrap(err, "seeding client")
	}
	for _, s := range []struct{ name, email, course string }{
		{"Sam Student", "sam@capstone.dev", "COMP9900"},
		{"Sue Student", "sue@capstone.dev", "COMP9900"},
		{"Uma Unassigned", "uma@capstone.dev", "COMP9900"},
	} {
		u, err := mkUser(s.name, s.email, role.Student, s.course)
		if err != nil {
			return fx, errors.Wrap(err, "seeding student")
		}
		fx.Students = append(fx.Students, u)
	}

	graded := 85
	fx.Team, err = teams.CreateTeam(team.Team{
		Name:    "Owls",
		Course:  "COMP9900",
		TutorID: fx.Tutor.ID,
		Skills:  []string{"Go", "React"},
		Members: []int{fx.Students[0].ID, fx.Students[1].ID},
		Sprints: []team.Sprint{
			{SprintNum: 1, Grade: &graded, Comment: "Solid start"},
			{SprintNum: 2},
			{SprintNum: 3},
		},
	})
	if err != nil {
		return fx, errors.Wrap(err, "seeding team")
	}
	if fx.OtherTeam, err = teams.CreateTeam(team.Team{Name: "Foxes", Course: "COMP3900", Skills: []string{"Python"}}); err != nil {
		return fx, errors.Wrap(err, "seeding team")
	}
	for _, s := range fx.Students[:2] {
		s.TeamID = fx.Team.ID
		if _, err := users.UpdateUser(s); err != nil {
			return fx, errors.Wrap(err, "assigning student")
		}
	}
	fx.Students[0].TeamID, fx.Students[1].TeamID = fx.Team.ID, fx.Team.ID

	fx.Project, err = projects.CreateProject(project.Project{
		Title:         "Churn model",
		Field:         "Data Science",
		Description:   "Predict which customers leave.",
		MaxTeams:      2,
		ClientID:      fx.Client.ID,
		TutorID:       fx.Tutor.ID,
		CoordinatorID: fx.Coordinator.ID,
		Skills:        []string{"Python", "SQL"},
		TeamIDs:       []int{fx.Team.ID},
	})
	if err != nil {
		return fx, errors.Wrap(err, "seeding project")
	}
	fx.Archived, err = projects.CreateProject(project.Project{
		Title:         "Old ledger",
		Field:         "Blockchain",
		Archived:      true,
		ClientID:      fx.Client.ID,
		CoordinatorID: fx.Coordinator.ID,
		Skills:        []string{},
	})
	if err != nil {
		return fx, errors.Wrap(err, "seeding archived project")
	}

	fx.Channel, err = messages.CreateChannel(message.Channel{
		Name:    "Owls",
		Type:    message.ChannelGroup,
		Members: []int{fx.Students[0].ID, fx.Students[1].ID, fx.Tutor.ID},
	})
	if err != nil {
		return fx, errors.Wrap(err, "seeding channel")
	}
	hello, _ := json.Marshal("Welcome to the team channel")
	if _, err := messages.CreateMessage(message.Message{
		ChannelID: fx.Channel.ID,
		SenderID:  fx.Tutor.ID,
		Type:      message.TypeText,
		Content:   hello,
		CreatedAt: now,
	}); err != nil {
		return fx, errors.Wrap(err, "seeding message")
	}
	return fx, nil
}
