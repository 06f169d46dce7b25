package pages

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core/session"
	"github.com/trezcool/capstone/core/user"
	"github.com/trezcool/capstone/gateway"
)

// Auth holds the account workflows. Login and Logout are the only writers of the session besides role changes.
type Auth struct {
	deps   Deps
	writer *session.Writer
}

func NewAuth(d Deps, writer *session.Writer) *Auth {
	return &Auth{deps: d, writer: writer}
}

func (a *Auth) post(ctx context.Context, path string, body interface{}, requiresAuth bool) (gateway.Payload, error) {
	req := a.deps.request(http.MethodPost, path, body)
	req.RequiresAuth = requiresAuth
	if !requiresAuth {
		req.Token = ""
	}
	return a.deps.API.Do(ctx, req)
}

// Login checks the credentials with the API and opens the session.
func (a *Auth) Login(ctx context.Context, cred user.Credentials) (session.Session, error) {
	if err := cred.Validate(a.deps.Validate); err != nil {
		return session.Session{}, err
	}
	payload, err := a.post(ctx, "v1/user/pwd_login", cred, false)
	if err != nil {
		return session.Session{}, err
	}
	var res user.LoginResponse
	if err := payload.Decode(&res); err != nil {
		return session.Session{}, errors.Wrap(err, "decoding login")
	}
	sess := session.Session{
		Token:     res.Token,
		UserID:    res.UserID,
		Role:      res.Role,
		Name:      res.UserName,
		Email:     res.Email,
		AvatarURL: res.AvatarURL,
	}
	if err := a.writer.Login(sess); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

// Logout clears the whole session. No request is sent.
func (a *Auth) Logout() error {
	return a.writer.Logout()
}

func (a *Auth) Register(ctx context.Context, nu user.NewUser) error {
	if err := nu.Validate(a.deps.Validate); err != nil {
		return err
	}
	_, err := a.post(ctx, "v1/user/register/send_email", nu.Body(), false)
	return err
}

// ForgotPassword asks for a reset code and returns the server's message.
func (a *Auth) ForgotPassword(ctx context.Context, fp user.ForgotPassword) (string, error) {
	if err := fp.Validate(a.deps.Validate); err != nil {
		return "", err
	}
	payload, err := a.post(ctx, "v1/user/forget_password/send_email", fp, false)
	if err != nil {
		return "", err
	}
	var res struct {
		Msg string `json:"msg"`
	}
	if err := payload.Decode(&res); err != nil {
		return "", errors.Wrap(err, "decoding forgot password")
	}
	return res.Msg, nil
}

func (a *Auth) ResetPassword(ctx context.Context, rp user.ResetPassword) error {
	if err := rp.Validate(a.deps.Validate); err != nil {
		return err
	}
	_, err := a.post(ctx, "v1/user/reset/password", rp.Body(), false)
	return err
}

// ChangePassword changes the current user's password. cp.UserID is taken from the session.
func (a *Auth) ChangePassword(ctx context.Context, cp user.ChangePassword) error {
	if !a.deps.Session.LoggedIn() {
		return session.ErrNotLoggedIn
	}
	cp.UserID = a.deps.Session.UserID()
	if err := cp.Validate(a.deps.Validate); err != nil {
		return err
	}
	_, err := a.post(ctx, "v1/user/change_password", cp.Body(), true)
	return err
}
