package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/session"
	"github.com/trezcool/capstone/core/user"
	"github.com/trezcool/capstone/gateway"
	"github.com/trezcool/capstone/modal"
	"github.com/trezcool/capstone/pages"
	testutil "github.com/trezcool/capstone/tests"
)

type cliTest struct {
	name       string
	args       []string
	extra      interface{}
	wantErr    error
	wantErrStr string
}

func setup(t *testing.T) (*commandLine, *testutil.Env, *bytes.Buffer) {
	t.Helper()
	env := testutil.Start(t)

	sess, writer, err := session.Open(session.NewFileStore(filepath.Join(t.TempDir(), "session.json")))
	require.NoError(t, err)
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	out := new(bytes.Buffer)
	cli := &commandLine{
		deps: pages.Deps{
			API:        gateway.New(env.URL, 5*time.Second),
			Session:    sess,
			Validate:   validate,
			Translator: translator,
		},
		writer: writer,
		out:    out,
		title:  env.Conf.ReportTitle,
	}
	readPassword := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = readPassword })
	return cli, env, out
}

func run(cli *commandLine, args ...string) error {
	return cli.run(append([]string{"cli"}, args...))
}

func login(t *testing.T, cli *commandLine, usr user.User) {
	t.Helper()
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(testutil.Password), nil }
	require.NoError(t, run(cli, "login", "-email", usr.Email))
}

func runTests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(cli, tt.args...)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, cli.errorMessage(err))
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "login without email", args: []string{"login"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"users", "-lol"}, wantErr: errHelp},
		{name: "assign-role without user", args: []string{"assign-role", "-role", "tutor"}, wantErr: errHelp},
		{name: "assign-role with unknown role", args: []string{"assign-role", "-user", "3", "-role", "janitor"}, wantErr: errHelp},
		{name: "assign-tutor without tutor", args: []string{"assign-tutor", "-project", "1"}, wantErr: errHelp},
		{name: "tutors without project", args: []string{"tutors"}, wantErr: errHelp},
		{name: "delete-project without project", args: []string{"delete-project"}, wantErr: errHelp},
		{name: "grades without team", args: []string{"grades"}, wantErr: errHelp},
		{name: "grade without sprint", args: []string{"grade", "-team", "1"}, wantErr: errHelp},
		{name: "share-card without student", args: []string{"share-card", "-channel", "1"}, wantErr: errHelp},
		{name: "archived and mine", args: []string{"projects", "-archived", "-mine"}, wantErr: errHelp},
		{name: "upload-spec without file", args: []string{"upload-spec", "-project", "1"}, wantErr: errHelp},
		{name: "download-spec without out", args: []string{"download-spec", "-project", "1"}, wantErr: errHelp},
		{name: "report without out", args: []string{"report"}, wantErr: errHelp},
		{name: "whoami logged out", args: []string{"whoami"}, wantErr: session.ErrNotLoggedIn},
		{name: "users logged out", args: []string{"users"}, wantErrStr: "Please login first"},
	}
	runTests(t, cli, tests)
}

func Test_commandLine_login(t *testing.T) {
	cli, env, out := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no password", args: []string{"login", "-email", env.Admin.Email}, wantErr: errHelp},
		{name: "wrong password", args: []string{"login", "-email", env.Admin.Email}, extra: extra{pwd: "nope"}, wantErrStr: "invalid email or password"},
		{name: "malformed email", args: []string{"login", "-email", "admin"}, extra: extra{pwd: "nope"}, wantErrStr: "email must be a valid email address"},
		{name: "success", args: []string{"login", "-email", env.Admin.Email}, extra: extra{pwd: testutil.Password}},
	}
	for _, tt := range tests {
		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}
		runTests(t, cli, []cliTest{tt})
	}

	assert.True(t, cli.deps.Session.LoggedIn())
	assert.Contains(t, out.String(), "Logged in as Ada Admin (Administrator)")

	out.Reset()
	require.NoError(t, run(cli, "whoami"))
	assert.Contains(t, out.String(), "admin@capstone.dev")

	require.NoError(t, run(cli, "logout"))
	assert.False(t, cli.deps.Session.LoggedIn())
}

func Test_commandLine_roles(t *testing.T) {
	cli, env, out := setup(t)
	login(t, cli, env.Admin)
	uma := env.Students[2]

	out.Reset()
	require.NoError(t, run(cli, "users", "-search", "unassigned"))
	assert.Contains(t, out.String(), uma.Email)
	assert.NotContains(t, out.String(), env.Tutor.Email)

	runTests(t, cli, []cliTest{
		{name: "unknown user", args: []string{"assign-role", "-user", "99", "-role", "tutor"}, wantErr: user.ErrNotFound},
		{name: "by label", args: []string{"assign-role", "-user", strconv.Itoa(uma.ID), "-role", "tutor"}},
	})
	assert.Equal(t, role.Tutor, env.User(t, uma.ID).Role)
	assert.Contains(t, out.String(), "Role updated successfully")

	notifs, err := env.Messages.Notifications(uma.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
}

func Test_commandLine_assignTutor(t *testing.T) {
	cli, env, out := setup(t)
	login(t, cli, env.Coordinator)
	pid := strconv.Itoa(env.Project.ID)

	runTests(t, cli, []cliTest{
		{name: "current tutor", args: []string{"assign-tutor", "-project", pid, "-tutor", strconv.Itoa(env.Tutor.ID)}, wantErrStr: "this tutor is already assigned to the project"},
		{name: "not a tutor", args: []string{"assign-tutor", "-project", pid, "-tutor", strconv.Itoa(env.Client.ID)}, wantErr: user.ErrNotFound},
		{name: "unknown project", args: []string{"assign-tutor", "-project", "99", "-tutor", strconv.Itoa(env.OtherTutor.ID)}, wantErrStr: "project not found"},
		{name: "other tutor", args: []string{"assign-tutor", "-project", pid, "-tutor", strconv.Itoa(env.OtherTutor.ID)}},
	})

	p, err := env.Projects.GetByID(env.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, env.OtherTutor.ID, p.TutorID)

	out.Reset()
	require.NoError(t, run(cli, "tutors", "-project", pid, "-search", "tom"))
	assert.Contains(t, out.String(), env.OtherTutor.Email+"  (current)")
	assert.NotContains(t, out.String(), env.Tutor.Email)
}

func Test_commandLine_teams(t *testing.T) {
	cli, env, out := setup(t)
	login(t, cli, env.Coordinator)

	require.NoError(t, run(cli, "teams", "-course", "COMP9900"))
	assert.Contains(t, out.String(), "Owls")
	assert.NotContains(t, out.String(), "Foxes")
	assert.Contains(t, out.String(), "Uma Unassigned")

	out.Reset()
	require.NoError(t, run(cli, "teams", "-search", "python"))
	assert.Contains(t, out.String(), "Foxes")
	assert.NotContains(t, out.String(), "Owls")
}

func Test_commandLine_grades(t *testing.T) {
	cli, env, out := setup(t)
	tid := strconv.Itoa(env.Team.ID)

	login(t, cli, env.Students[0])
	require.NoError(t, run(cli, "grades", "-team", tid))
	assert.Contains(t, out.String(), "Solid start")
	assert.Equal(t, modal.ErrReadOnly, run(cli, "grade", "-team", tid, "-sprint", "2", "-grade", "90"))

	login(t, cli, env.Tutor)
	runTests(t, cli, []cliTest{
		{name: "not a number", args: []string{"grade", "-team", tid, "-sprint", "2", "-grade", "A+"}, wantErrStr: "grade for sprint 2 must be a number between 0 and 100"},
		{name: "graded", args: []string{"grade", "-team", tid, "-sprint", "2", "-grade", "90", "-comment", "Great demo"}},
	})

	g, err := env.Teams.Grades(env.Team.ID)
	require.NoError(t, err)
	require.NotNil(t, g.Sprints[1].Grade)
	assert.Equal(t, 90, *g.Sprints[1].Grade)

	out.Reset()
	login(t, cli, env.Students[1])
	require.NoError(t, run(cli, "notifications"))
	assert.Contains(t, out.String(), "Your team has new sprint grades.")
	require.NoError(t, run(cli, "notifications", "-clear"))
	out.Reset()
	require.NoError(t, run(cli, "notifications"))
	assert.Contains(t, out.String(), "No notifications")
}

func Test_commandLine_shareCard(t *testing.T) {
	cli, env, out := setup(t)
	login(t, cli, env.Students[0])
	cid := strconv.Itoa(env.Channel.ID)

	runTests(t, cli, []cliTest{
		{name: "unknown student", args: []string{"share-card", "-channel", cid, "-student", "nobody@capstone.dev"}, wantErr: user.ErrNotFound},
		{name: "shared", args: []string{"share-card", "-channel", cid, "-student", env.Students[2].Email}},
	})
	assert.Contains(t, out.String(), "Shared Uma Unassigned's card")

	out.Reset()
	require.NoError(t, run(cli, "students", "-search", "sue@"))
	assert.Contains(t, out.String(), "Sue Student")
	assert.NotContains(t, out.String(), "Sam Student")

	notifs, err := env.Messages.Notifications(env.Tutor.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "Sam Student shared a personal card.", notifs[0].Content)
}

func Test_commandLine_projects(t *testing.T) {
	cli, env, out := setup(t)
	login(t, cli, env.Coordinator)
	pid := strconv.Itoa(env.Project.ID)
	dir := t.TempDir()

	require.NoError(t, run(cli, "projects"))
	assert.Contains(t, out.String(), "Churn model")
	assert.Contains(t, out.String(), "1 / 2")

	out.Reset()
	require.NoError(t, run(cli, "projects", "-archived"))
	assert.Contains(t, out.String(), "Old ledger")
	assert.NotContains(t, out.String(), "Churn model")

	spec := filepath.Join(dir, "spec.pdf")
	require.NoError(t, os.WriteFile(spec, []byte("%PDF-1.4 churn"), 0o600))
	saved := filepath.Join(dir, "saved.pdf")

	runTests(t, cli, []cliTest{
		{name: "missing file", args: []string{"upload-spec", "-project", pid, "-file", filepath.Join(dir, "nope.pdf")}, wantErrStr: "open " + filepath.Join(dir, "nope.pdf") + ": no such file or directory"},
		{name: "upload", args: []string{"upload-spec", "-project", pid, "-file", spec}},
		{name: "download", args: []string{"download-spec", "-project", pid, "-out", saved}},
	})
	content, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 churn", string(content))

	runTests(t, cli, []cliTest{
		{name: "delete", args: []string{"delete-project", "-project", pid}},
		{name: "delete again", args: []string{"delete-project", "-project", pid}, wantErrStr: "project not found"},
	})
	assert.Contains(t, out.String(), "Project deleted successfully")
}

func Test_commandLine_report(t *testing.T) {
	cli, env, out := setup(t)
	path := filepath.Join(t.TempDir(), "report.pdf")

	login(t, cli, env.Students[0])
	assert.Equal(t, "permission denied", gateway.Message(run(cli, "report", "-out", path)))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	login(t, cli, env.Coordinator)
	require.NoError(t, run(cli, "report", "-out", path, "-client", env.Client.Name))
	assert.Contains(t, out.String(), "Report saved to "+path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}
