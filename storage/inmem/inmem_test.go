package inmemdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/capstone/core/message"
	"github.com/trezcool/capstone/core/project"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/team"
	"github.com/trezcool/capstone/core/user"
)

func setup(t *testing.T) *DB {
	t.Helper()
	db, err := Open()
	require.NoError(t, err)
	return db
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(setup(t))
	seed := []user.User{
		{Email: "ann@uni.edu", Role: role.Tutor},
		{Email: "bo@uni.edu", Role: role.Student, Course: "COMP9900"},
		{Email: "cy@uni.edu", Role: role.Student, Course: "COMP9900", TeamID: 1},
		{Email: "di@uni.edu", Role: role.Student, Course: "COMP3900"},
	}
	for _, u := range seed {
		_, err := repo.CreateUser(u)
		require.NoError(t, err)
	}

	assert.Equal(t, user.ErrEmailExists, repo.CheckEmailUniqueness("ann@uni.edu"))
	ann, err := repo.GetUserByEmail("ann@uni.edu")
	require.NoError(t, err)
	assert.NoError(t, repo.CheckEmailUniqueness("ann@uni.edu", ann))
	assert.NoError(t, repo.CheckEmailUniqueness("new@uni.edu"))

	tests := []struct {
		name   string
		filter user.QueryFilter
		want   []int
	}{
		{name: "all", filter: user.QueryFilter{}, want: []int{1, 2, 3, 4}},
		{name: "tutors", filter: user.QueryFilter{Roles: []role.ID{role.Tutor}}, want: []int{1}},
		{name: "unassigned students", filter: user.QueryFilter{Roles: []role.ID{role.Student}, Unassigned: true}, want: []int{2, 4}},
		{name: "unassigned students of a course", filter: user.QueryFilter{Roles: []role.ID{role.Student}, Course: "COMP9900", Unassigned: true}, want: []int{2}},
		{name: "nobody", filter: user.QueryFilter{Roles: []role.ID{role.Administrator}}, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := repo.FilterUsers(tt.filter)
			require.NoError(t, err)
			ids := []int{}
			for _, u := range users {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	ann.PasswordHash = []byte("hash")
	_, err = repo.UpdateUser(ann)
	require.NoError(t, err)
	ann.PasswordHash = nil
	ann.Role = role.Coordinator
	got, err := repo.UpdateUser(ann)
	require.NoError(t, err)
	assert.Equal(t, []byte("hash"), got.PasswordHash, "an unset hash is kept")
	assert.Equal(t, role.Coordinator, got.Role)

	_, err = repo.GetUserByID(99)
	assert.Equal(t, user.ErrNotFound, err)
	_, err = repo.UpdateUser(user.User{ID: 99})
	assert.Equal(t, user.ErrNotFound, err)
}

func TestTeamRepository(t *testing.T) {
	repo := NewTeamRepository(setup(t))
	_, _ = repo.CreateTeam(team.Team{Name: "Owls", Course: "COMP9900"})
	_, _ = repo.CreateTeam(team.Team{Name: "Cats", Course: "COMP3900"})

	all, err := repo.FilterTeams("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	comp, err := repo.FilterTeams("COMP3900")
	require.NoError(t, err)
	require.Len(t, comp, 1)
	assert.Equal(t, "Cats", comp[0].Name)

	_, err = repo.UpdateTeam(team.Team{ID: 42})
	assert.Equal(t, team.ErrNotFound, err)
}

func TestProjectRepository(t *testing.T) {
	repo := NewProjectRepository(setup(t))
	p1, _ := repo.CreateProject(project.Project{Title: "Chatbot"})
	p2, _ := repo.CreateProject(project.Project{Title: "Ledger"})
	p2.Archived = true
	_, err := repo.UpdateProject(p2)
	require.NoError(t, err)

	public, _ := repo.QueryProjects(false)
	archived, _ := repo.QueryProjects(true)
	require.Len(t, public, 1)
	require.Len(t, archived, 1)
	assert.Equal(t, p1.ID, public[0].ID)
	assert.Equal(t, p2.ID, archived[0].ID)

	require.NoError(t, repo.DeleteProject(p1.ID))
	assert.Equal(t, project.ErrNotFound, repo.DeleteProject(p1.ID))
}

func TestMessageRepository(t *testing.T) {
	repo := NewMessageRepository(setup(t))
	c, err := repo.CreateChannel(message.Channel{Name: "owls", Members: []int{1, 2}})
	require.NoError(t, err)
	_, err = repo.CreateMessage(message.Message{ChannelID: c.ID, SenderID: 1})
	require.NoError(t, err)
	_, _ = repo.CreateMessage(message.Message{ChannelID: c.ID + 1, SenderID: 1})

	msgs, _ := repo.ChannelMessages(c.ID)
	assert.Len(t, msgs, 1)

	_, _ = repo.CreateNotification(message.Notification{Content: "first"}, 1, 2)
	_, _ = repo.CreateNotification(message.Notification{Content: "second"}, 1)

	notes, _ := repo.UserNotifications(1)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Content)

	require.NoError(t, repo.ClearNotifications(1))
	notes, _ = repo.UserNotifications(1)
	assert.Empty(t, notes)
	notes, _ = repo.UserNotifications(2)
	assert.Len(t, notes, 1)

	_, err = repo.GetChannelByID(42)
	assert.Equal(t, message.ErrChannelNotFound, err)
}
