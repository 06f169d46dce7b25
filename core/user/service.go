package user

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/role"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("old password is incorrect")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		CreateUser(user User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id int) (User, error)
		GetUserByEmail(email string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		FilterUsers(filter QueryFilter) ([]User, error)
		UpdateUser(user User) (User, error)
	}

	QueryFilter struct {
		Roles      []role.ID
		Course     string
		Unassigned bool // not a member of any team
	}

	Service struct {
		repo     Repository
		tokens   TokenGenerator
		notifier core.Notifier
		appName  string
	}
)

func NewService(repo Repository, tokens TokenGenerator, notifier core.Notifier, appName string) *Service {
	return &Service{repo: repo, tokens: tokens, notifier: notifier, appName: appName}
}

func (svc *Service) checkUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a Student account.
func (svc *Service) Register(nu NewUser) (User, error) {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if err := svc.checkUniqueness(nu.Email); err != nil {
		return User{}, err
	}
	now := time.Now().UTC()
	usr := User{
		Name:      defaultName(nu.Email),
		Email:     nu.Email,
		Role:      role.Student,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

// Create stores a fully described account (seeding, admin tooling).
func (svc *Service) Create(usr User, pwd string) (User, error) {
	usr.Email = core.CleanString(usr.Email, true /* lower */)
	if err := svc.checkUniqueness(usr.Email); err != nil {
		return User{}, err
	}
	if usr.Name == "" {
		usr.Name = defaultName(usr.Email)
	}
	now := time.Now().UTC()
	usr.CreatedAt, usr.UpdatedAt = now, now
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

// Authenticate checks the credentials and records the login.
func (svc *Service) Authenticate(cred Credentials) (User, error) {
	usr, err := svc.repo.GetUserByEmail(core.CleanString(cred.Email, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := usr.CheckPassword(cred.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(filter QueryFilter) ([]User, error) {
	return svc.repo.FilterUsers(filter)
}

func (svc *Service) Update(usr User) (User, error) {
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

func (svc *Service) SetRole(id int, r role.ID) (User, error) {
	if !r.Valid() {
		return User{}, core.NewValidationError(fmt.Errorf("invalid role %d", r), core.FieldError{Field: "role", Error: "invalid role"})
	}
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	usr.Role = r
	return svc.Update(usr)
}

func (svc *Service) ChangePassword(cp ChangePassword) error {
	usr, err := svc.repo.GetUserByID(cp.UserID)
	if err != nil {
		return err
	}
	if err := usr.CheckPassword(cp.OldPassword); err != nil {
		return ErrWrongPassword
	}
	if err := usr.SetPassword(cp.NewPassword); err != nil {
		return err
	}
	_, err = svc.Update(usr)
	return err
}

// RequestPasswordReset e-mails a reset token. Unknown addresses are ignored.
func (svc *Service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}
	token, err := svc.tokens.MakeToken(usr)
	if err != nil {
		return err
	}
	svc.notifier.SendMessages(&core.NotificationMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Password Reset",
		Body:    fmt.Sprintf("Use this code to reset your %s password: %s", svc.appName, token),
	})
	return nil
}

func (svc *Service) ResetPassword(rp ResetPassword) error {
	usr, err := svc.GetByEmail(rp.Email)
	if err != nil {
		if err == ErrNotFound {
			return ErrInvalidToken
		}
		return err
	}
	if err := svc.tokens.VerifyToken(usr, rp.Token); err != nil {
		return err
	}
	if err := usr.SetPassword(rp.Password); err != nil {
		return err
	}
	_, err = svc.Update(usr)
	return err
}

func defaultName(email string) string {
	if addr, err := mail.ParseAddress(email); err == nil {
		email = addr.Address
	}
	for i, c := range email {
		if c == '@' {
			return email[:i]
		}
	}
	return email
}
