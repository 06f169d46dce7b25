package pages

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/project"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/session"
	"github.com/trezcool/capstone/core/team"
	"github.com/trezcool/capstone/core/user"
	"github.com/trezcool/capstone/gateway"
	"github.com/trezcool/capstone/modal"
	"github.com/trezcool/capstone/report"
	testutil "github.com/trezcool/capstone/tests"
)

type fixture struct {
	env    *testutil.Env
	deps   Deps
	writer *session.Writer
	auth   *Auth
}

func setup(t *testing.T) *fixture {
	t.Helper()
	env := testutil.Start(t)
	sess, writer, err := session.Open(session.NewMemoryStore())
	require.NoError(t, err)
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	d := Deps{
		API:        gateway.New(env.URL, 5*time.Second),
		Session:    sess,
		Validate:   validate,
		Translator: translator,
	}
	return &fixture{env: env, deps: d, writer: writer, auth: NewAuth(d, writer)}
}

func (f *fixture) login(t *testing.T, usr user.User) {
	t.Helper()
	_, err := f.auth.Login(context.Background(), user.Credentials{Email: usr.Email, Password: testutil.Password})
	require.NoError(t, err)
}

func TestAuth(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.auth.Login(ctx, user.Credentials{Email: "not-an-email", Password: "x"})
	assert.Error(t, err)
	assert.False(t, gateway.IsKind(err, gateway.KindDomain), "malformed credentials never reach the API")
	assert.False(t, f.deps.Session.LoggedIn())

	_, err = f.auth.Login(ctx, user.Credentials{Email: f.env.Tutor.Email, Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "invalid email or password", gateway.Message(err))
	assert.True(t, gateway.IsKind(err, gateway.KindDomain))

	sess, err := f.auth.Login(ctx, user.Credentials{Email: f.env.Tutor.Email, Password: testutil.Password})
	require.NoError(t, err)
	assert.Equal(t, sess, f.deps.Session.Current())
	assert.Equal(t, role.Tutor, f.deps.Session.Role())

	err = f.auth.ChangePassword(ctx, user.ChangePassword{OldPassword: testutil.Password, NewPassword: "N3w!secret", PasswordConfirm: "N3w!secreT"})
	require.Error(t, err, "confirmation mismatch is caught before any request")

	require.NoError(t, f.auth.ChangePassword(ctx, user.ChangePassword{OldPassword: testutil.Password, NewPassword: "N3w!secret", PasswordConfirm: "N3w!secret"}))

	require.NoError(t, f.auth.Logout())
	assert.False(t, f.deps.Session.LoggedIn())
	assert.Error(t, f.auth.ChangePassword(ctx, user.ChangePassword{}))

	_, err = f.auth.Login(ctx, user.Credentials{Email: f.env.Tutor.Email, Password: "N3w!secret"})
	assert.NoError(t, err)
}

func TestAuthRegister(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	err := f.auth.Register(ctx, user.NewUser{Email: "newbie@capstone.dev", Password: "Str0ng!pass", PasswordConfirm: "Str0ng!pass"})
	require.NoError(t, err)
	err = f.auth.Register(ctx, user.NewUser{Email: "newbie@capstone.dev", Password: "Str0ng!pass", PasswordConfirm: "Str0ng!pass"})
	assert.Equal(t, "a user with this email already exists", gateway.Message(err))

	msg, err := f.auth.ForgotPassword(ctx, user.ForgotPassword{Email: "newbie@capstone.dev"})
	require.NoError(t, err)
	assert.Contains(t, msg, "If the email address supplied")
}

func TestRoleManager(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.login(t, f.env.Admin)
	rm := NewRoleManager(f.deps, f.writer)

	require.NoError(t, rm.Users.Load(ctx))
	assert.Len(t, rm.Users.Items(), 8)
	assert.Len(t, rm.Users.Filter("capstone.dev"), 8)
	got := rm.Users.Filter("uma")
	require.Len(t, got, 1)
	uma := got[0]

	require.NoError(t, rm.Assign.Open(uma))
	assert.Equal(t, RoleEdit{Role: role.Student}, rm.Assign.Pending())
	require.NoError(t, rm.Assign.Edit(func(e *RoleEdit) { e.Role = role.ID(0) }))
	assert.Error(t, rm.Assign.Submit(ctx))
	assert.Equal(t, modal.Open, rm.Assign.State())

	require.NoError(t, rm.Assign.Edit(func(e *RoleEdit) { e.Role = role.Tutor }))
	require.NoError(t, rm.Assign.Submit(ctx))
	assert.Equal(t, modal.Closed, rm.Assign.State())
	assert.Equal(t, "", rm.Users.Term(), "the list was reloaded")
	assert.Equal(t, role.Tutor, f.env.User(t, uma.UserID).Role)

	notifs, _ := f.env.Messages.Notifications(uma.UserID)
	require.Len(t, notifs, 1)
	assert.Equal(t, "Your role has been changed to Tutor.", notifs[0].Content)

	// changing one's own role updates the session
	self := user.ListItem{UserID: f.env.Admin.ID, Role: role.Administrator}
	require.NoError(t, rm.Assign.Open(self))
	require.NoError(t, rm.Assign.Edit(func(e *RoleEdit) { e.Role = role.Coordinator }))
	require.NoError(t, rm.Assign.Submit(ctx))
	assert.Equal(t, role.Coordinator, f.deps.Session.Role())
}

func TestRoleManagerForbidden(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.login(t, f.env.Students[0])
	rm := NewRoleManager(f.deps, f.writer)

	err := rm.Users.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, "permission denied", gateway.Message(err))
	assert.Empty(t, rm.Users.Items())
}

func TestTutorAssign(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.login(t, f.env.Coordinator)

	ps := NewProjects(f.deps)
	detail, err := ps.Detail(ctx, f.env.Project.ID)
	require.NoError(t, err)

	reloads := 0
	ta := NewTutorAssign(f.deps, detail, func(context.Context) { reloads++ })
	require.NoError(t, ta.Tutors.Load(ctx))
	tutors := ta.Tutors.Items()
	require.Len(t, tutors, 2)
	assert.False(t, ta.Assignable(tutors[0]))
	assert.True(t, ta.Assignable(tutors[1]))

	require.NoError(t, ta.Assign.Open(tutors[0]))
	assert.Error(t, ta.Assign.Submit(ctx), "the current tutor is not assignable again")
	require.NoError(t, ta.Assign.Cancel())

	require.NoError(t, ta.Assign.Open(tutors[1]))
	require.NoError(t, ta.Assign.Submit(ctx))
	assert.Equal(t, 1, reloads)
	assert.Equal(t, f.env.OtherTutor.ID, ta.Project().TutorID)
	assert.False(t, ta.Assignable(tutors[1]))

	p, err := f.env.Projects.GetByID(f.env.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, f.env.OtherTutor.ID, p.TutorID)
}

func TestTeamRoster(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.login(t, f.env.Coordinator)
	tr := NewTeamRoster(f.deps)

	require.NoError(t, tr.Load(ctx))
	assert.Len(t, tr.Teams.Items(), 2)
	assert.Len(t, tr.Students.Items(), 1)
	assert.Len(t, tr.Teams.Filter("react"), 1, "skills are searchable")
	assert.Len(t, tr.Teams.Filter(itoa(f.env.OtherTeam.ID)), 1)

	require.NoError(t, tr.SetCourse(ctx, "COMP3900"))
	assert.Equal(t, []team.ListItem{f.env.OtherTeam.ListItem()}, tr.Teams.Items())
	assert.Empty(t, tr.Students.Items())
	assert.Equal(t, "", tr.Teams.Term(), "a course change resets the search")

	require.NoError(t, tr.SetCourse(ctx, ""))
	assert.Len(t, tr.Teams.Items(), 2)
}

func TestCardPicker(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sam := f.env.Students[0]
	f.login(t, sam)
	cp := NewCardPicker(f.deps)

	require.NoError(t, cp.Students.Load(ctx))
	mine := cp.Students.Filter(sam.Email)
	require.Len(t, mine, 1)

	msg, err := cp.Share(ctx, f.env.Channel.ID, mine[0])
	require.NoError(t, err)
	assert.Equal(t, 2, msg.Type)
	assert.JSONEq(t, `{"name":"Sam Student","email":"sam@capstone.dev"}`, string(msg.Content))

	for _, id := range []int{f.env.Students[1].ID, f.env.Tutor.ID} {
		notifs, _ := f.env.Messages.Notifications(id)
		require.Len(t, notifs, 1)
		assert.Equal(t, "Sam Student shared a personal card.", notifs[0].Content)
	}
	notifs, _ := f.env.Messages.Notifications(sam.ID)
	assert.Empty(t, notifs)

	_, err = cp.Share(ctx, 99, mine[0])
	assert.Equal(t, "channel not found", gateway.Message(err))
}

func TestGradeEntry(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.login(t, f.env.Tutor)
	reloads := 0
	ge := NewGradeEntry(f.deps, func(context.Context) { reloads++ })
	assert.False(t, ge.Modal.ReadOnly())

	require.NoError(t, ge.Open(ctx, f.env.Team.ID))
	assert.Equal(t, "85", ge.Modal.Pending()[1].Grade)

	require.NoError(t, ge.SetGrade(2, "abc", ""))
	assert.Error(t, ge.Modal.Submit(ctx))
	assert.True(t, ge.Modal.Alert().IsError())
	assert.Equal(t, 0, reloads)

	require.NoError(t, ge.SetGrade(2, "92", "Nice"))
	require.NoError(t, ge.Modal.Submit(ctx))
	assert.Equal(t, 1, reloads)

	g, err := f.env.Teams.Grades(f.env.Team.ID)
	require.NoError(t, err)
	assert.Equal(t, 92, *g.Sprints[1].Grade)
	assert.Equal(t, "Nice", g.Sprints[1].Comment)
	notifs, _ := f.env.Messages.Notifications(f.env.Students[0].ID)
	assert.Len(t, notifs, 1)
}

func TestGradeEntryReadOnlyForStudents(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.login(t, f.env.Students[0])
	ge := NewGradeEntry(f.deps, func(context.Context) {})

	assert.True(t, ge.Modal.ReadOnly())
	require.NoError(t, ge.Open(ctx, f.env.Team.ID))
	assert.Equal(t, modal.ErrReadOnly, ge.SetGrade(2, "100", ""))
	assert.Equal(t, modal.ErrReadOnly, ge.Modal.Submit(ctx))
}

func TestProjects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.login(t, f.env.Coordinator)
	ps := NewProjects(f.deps)

	_, err := ps.Create(ctx, project.Draft{Title: "Forecast"}, nil)
	require.Error(t, err)
	assert.Equal(t, "field is required; email is required", core.TranslateError(err, f.deps.Translator))

	created, err := ps.Create(ctx, project.Draft{
		Title:          "Forecast",
		Field:          "Data Science",
		ClientEmail:    f.env.Client.Email,
		RequiredSkills: []string{"Python"},
		MaxTeams:       2,
	}, &gateway.File{Name: "spec.pdf", Content: bytes.NewReader([]byte("%PDF-1.4 forecast"))})
	require.NoError(t, err)
	assert.NotZero(t, created.ProjectID)
	assert.Len(t, ps.Public.Items(), 2, "lists are reloaded after a create")

	detail, err := ps.Modify(ctx, created.ProjectID, project.Draft{Description: "Quarterly sales"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly sales", detail.Description)
	assert.Equal(t, "Forecast", detail.Title)

	spec, err := ps.DownloadSpec(ctx, detail)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 forecast", string(spec))

	link, err := ps.UploadSpec(ctx, created.ProjectID, &gateway.File{Name: "v2.pdf", Content: bytes.NewReader([]byte("%PDF-1.4 v2"))})
	require.NoError(t, err)
	spec, err = ps.DownloadSpec(ctx, project.Detail{SpecLink: link})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 v2", string(spec))
	_, err = ps.DownloadSpec(ctx, project.Detail{})
	assert.Equal(t, errNoSpec, err)

	require.NoError(t, ps.Mine.Load(ctx))
	assert.Len(t, ps.Mine.Items(), 2)

	msg, err := ps.Archive(ctx, f.env.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Project archived successfully", msg)
	assert.Len(t, ps.Public.Items(), 1)
	assert.Len(t, ps.Archived.Items(), 2)

	require.NoError(t, ps.Delete.Open(detail))
	require.NoError(t, ps.Delete.Submit(ctx))
	assert.Empty(t, ps.Public.Items())
	_, err = ps.Detail(ctx, created.ProjectID)
	assert.Equal(t, "project not found", gateway.Message(err))
}

func TestNotifications(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	uma := f.env.Students[2]
	require.NoError(t, f.env.Messages.Notify(core.NotifyUsers("Welcome aboard", uma.ID)))
	require.NoError(t, f.env.Messages.Notify(core.NotifyUsers("Teams are open", uma.ID)))
	f.login(t, uma)

	n := NewNotifications(f.deps)
	require.NoError(t, n.List.Load(ctx))
	require.Len(t, n.List.Items(), 2)
	assert.Equal(t, "Teams are open", n.List.Items()[0].Content)
	assert.Len(t, n.List.Filter("welcome"), 1)

	require.NoError(t, n.Clear(ctx))
	assert.Empty(t, n.List.Items())
}

func TestProfile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := Profile(ctx, f.deps, f.writer)
	assert.Equal(t, session.ErrNotLoggedIn, err)

	f.login(t, f.env.Client)
	p, err := Profile(ctx, f.deps, f.writer)
	require.NoError(t, err)
	assert.Equal(t, "Cleo Client", p.Name)
	assert.Equal(t, "Cleo Client", f.deps.Session.Current().Name)
}

func TestReport(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.login(t, f.env.Coordinator)

	r, stats, err := Report(ctx, f.deps, report.Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalStudents)
	assert.Equal(t, []string{"Data Science"}, r.Fields)
	require.NotNil(t, r.Table)
	assert.Len(t, r.Table.Rows(), 1)

	var out bytes.Buffer
	require.NoError(t, report.Render(ctx, r, report.NewChartCapturer(), report.TableFilter{}, &out))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
}

// saveFailStore refuses to persist once failSave is set.
type saveFailStore struct {
	*session.MemoryStore
	failSave bool
}

func (st *saveFailStore) Save(s session.Session) error {
	if st.failSave {
		return errors.New("disk full")
	}
	return st.MemoryStore.Save(s)
}

func TestRoleManagerSelfAssignSessionSaveFails(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	store := &saveFailStore{MemoryStore: session.NewMemoryStore()}
	sess, writer, err := session.Open(store)
	require.NoError(t, err)
	f.deps.Session = sess
	f.writer = writer
	f.auth = NewAuth(f.deps, writer)
	f.login(t, f.env.Admin)
	rm := NewRoleManager(f.deps, f.writer)

	store.failSave = true
	self := user.ListItem{UserID: f.env.Admin.ID, Role: role.Administrator}
	require.NoError(t, rm.Assign.Open(self))
	require.NoError(t, rm.Assign.Edit(func(e *RoleEdit) { e.Role = role.Coordinator }))
	err = rm.Assign.Submit(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Equal(t, role.Coordinator, f.env.User(t, f.env.Admin.ID).Role, "the server kept the new role")
	assert.Equal(t, role.Administrator, f.deps.Session.Role())
	assert.Equal(t, modal.Closed, rm.Assign.State())
	assert.Equal(t, core.AlertError, rm.Assign.Alert().Kind)
}

// garbledAPI answers every request with a body that is not JSON.
type garbledAPI struct {
	API
}

func (garbledAPI) Do(context.Context, gateway.Request) (gateway.Payload, error) {
	return gateway.Payload("<html>oops</html>"), nil
}

func TestForgotPasswordMalformedResponse(t *testing.T) {
	f := setup(t)
	f.deps.API = garbledAPI{API: f.deps.API}
	auth := NewAuth(f.deps, f.writer)

	msg, err := auth.ForgotPassword(context.Background(), user.ForgotPassword{Email: "newbie@capstone.dev"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding forgot password")
	assert.Empty(t, msg)
}
