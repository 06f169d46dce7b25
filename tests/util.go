// Package testutil starts a seeded development API for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	echoapi "github.com/trezcool/capstone/apps/devapi/echo"
	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/message"
	"github.com/trezcool/capstone/core/project"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/team"
	"github.com/trezcool/capstone/core/user"
	logsvc "github.com/trezcool/capstone/services/logger"
	notifysvc "github.com/trezcool/capstone/services/notify"
	inmemdb "github.com/trezcool/capstone/storage/inmem"
)

// Password is shared by every seeded account.
const Password = "Passw0rd!"

// Env is a running development API and the records it was seeded with.
type Env struct {
	inmemdb.Fixtures
	Conf     *core.Config
	URL      string
	Server   *httptest.Server
	UserRepo user.Repository
	Messages *message.Service
	Teams    *team.Service
	Projects *project.Service
}

func Config() *core.Config {
	return &core.Config{
		Env:            "TEST",
		TestMode:       true,
		AppName:        "Capstone",
		Build:          "test",
		RequestTimeout: 5 * time.Second,
		ReportTitle:    "Project Statistics",
		Server: core.ServerConfig{
			Host:               "localhost",
			SecretKey:          "test-secret",
			JWTExpirationDelta: time.Hour,
			ShutdownTimeout:    time.Second,
		},
	}
}

// Start serves a freshly seeded API until the end of the test.
func Start(t *testing.T) *Env {
	t.Helper()
	conf := Config()
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	fx, err := inmemdb.Seed(db, Password)
	if err != nil {
		t.Fatalf("inmemdb.Seed(): %v", err)
	}
	usrRepo := inmemdb.NewUserRepository(db)

	notifier := notifysvc.NewConsoleServiceMock(conf)
	tokens := user.NewTokenGenerator(conf.Server.SecretKey, conf.Server.JWTExpirationDelta)
	usrSvc := user.NewService(usrRepo, tokens, notifier, conf.AppName)
	teamSvc := team.NewService(inmemdb.NewTeamRepository(db))
	projectSvc := project.NewService(inmemdb.NewProjectRepository(db), usrRepo)
	messageSvc := message.NewService(inmemdb.NewMessageRepository(db), usrRepo, teamSvc.Members, notifier)

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	app := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		UserSvc:        usrSvc,
		TeamSvc:        teamSvc,
		ProjectSvc:     projectSvc,
		MessageSvc:     messageSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)
	t.Cleanup(notifysvc.Reset)

	return &Env{
		Fixtures: fx,
		Conf:     conf,
		URL:      srv.URL + "/",
		Server:   srv,
		UserRepo: usrRepo,
		Messages: messageSvc,
		Teams:    teamSvc,
		Projects: projectSvc,
	}
}

// Token logs usr in through the API and returns its JWT.
func (env *Env) Token(t *testing.T, usr user.User) string {
	t.Helper()
	body, _ := json.Marshal(user.Credentials{Email: usr.Email, Password: Password})
	res, err := http.Post(env.URL+"v1/user/pwd_login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Token(): %v", err)
	}
	defer res.Body.Close()

	var login user.LoginResponse
	if err := json.NewDecoder(res.Body).Decode(&login); err != nil || login.Token == "" {
		t.Fatalf("Token(%s): status %d, err %v", usr.Email, res.StatusCode, err)
	}
	return login.Token
}

// User reads usr back from the store.
func (env *Env) User(t *testing.T, id int) user.User {
	t.Helper()
	usr, err := env.UserRepo.GetUserByID(id)
	if err != nil {
		t.Fatalf("User(%d): %v", id, err)
	}
	return usr
}

// CreateUser stores a new account with Password.
func (env *Env) CreateUser(t *testing.T, name, email string, r role.ID) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{Name: name, Email: email, Role: r, CreatedAt: now, UpdatedAt: now}
	if err := usr.SetPassword(Password); err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	usr, err := env.UserRepo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}
