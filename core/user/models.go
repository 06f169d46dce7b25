package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/role"
)

// User is the account record held by the API.
type User struct {
	ID           int       `json:"userId"`
	Name         string    `json:"userName"`
	Email        string    `json:"email"`
	Role         role.ID   `json:"role"`
	AvatarURL    string    `json:"avatarURL"`
	Bio          string    `json:"bio"`
	Organization string    `json:"organization"`
	Field        string    `json:"field"`
	Course       string    `json:"course"`
	Skills       []string  `json:"skills"`
	TeamID       int       `json:"teamId"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"-"` // UTC
	UpdatedAt    time.Time `json:"-"` // UTC
	LastLogin    time.Time `json:"-"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) ListItem() ListItem {
	return ListItem{UserID: u.ID, UserName: u.Name, Email: u.Email, Role: u.Role, AvatarURL: u.AvatarURL}
}

func (u User) Student() Student {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	return Student{UserID: u.ID, UserName: u.Name, Email: u.Email, AvatarURL: u.AvatarURL, Skills: skills, Role: u.Role}
}

func (u User) Profile() Profile {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	return Profile{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Bio:          u.Bio,
		Organization: u.Organization,
		AvatarURL:    u.AvatarURL,
		Skills:       skills,
		Field:        u.Field,
	}
}

// ListItem is a row of the user and tutor lists.
type ListItem struct {
	UserID    int     `json:"userId"`
	UserName  string  `json:"userName"`
	Email     string  `json:"email"`
	Role      role.ID `json:"role"`
	AvatarURL string  `json:"avatar"`
}

// Student is a row of the student list (personal card picker, unassigned students).
type Student struct {
	UserID    int      `json:"userId"`
	UserName  string   `json:"userName"`
	Email     string   `json:"email"`
	AvatarURL string   `json:"avatarURL"`
	Skills    []string `json:"userSkills"`
	Role      role.ID  `json:"role"`
}

type Profile struct {
	UserID       int      `json:"userId"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         role.ID  `json:"role"`
	Bio          string   `json:"bio"`
	Organization string   `json:"organization"`
	AvatarURL    string   `json:"avatarURL"`
	Skills       []string `json:"skills"`
	Field        string   `json:"field"`
}

// Credentials are posted to the password login endpoint.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}

type LoginResponse struct {
	Token     string  `json:"token"`
	UserID    int     `json:"userId"`
	Role      role.ID `json:"role"`
	UserName  string  `json:"userName"`
	Email     string  `json:"email"`
	AvatarURL string  `json:"avatarURL"`
}

// NewUser contains information needed to register an account.
type NewUser struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,pwdpolicy"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return validate.Struct(nu)
}

// Body is what gets posted: the confirmation never leaves the client.
func (nu NewUser) Body() map[string]string {
	return map[string]string{"email": nu.Email, "password": nu.Password}
}

type ForgotPassword struct {
	Email string `json:"email" validate:"required,email"`
}

func (fp *ForgotPassword) Validate(validate *validator.Validate) error {
	fp.Email = core.CleanString(fp.Email, true /* lower */)
	return validate.Struct(fp)
}

type ResetPassword struct {
	Email           string `json:"email" validate:"required,email"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,pwdpolicy"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (rp *ResetPassword) Validate(validate *validator.Validate) error {
	rp.Email = core.CleanString(rp.Email, true /* lower */)
	rp.Token = core.CleanString(rp.Token)
	return validate.Struct(rp)
}

func (rp ResetPassword) Body() map[string]string {
	return map[string]string{"email": rp.Email, "token": rp.Token, "password": rp.Password}
}

type ChangePassword struct {
	UserID          int    `json:"userId" validate:"required"`
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,pwdpolicy,nefield=OldPassword"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=NewPassword"`
}

func (cp *ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

func (cp ChangePassword) Body() map[string]interface{} {
	return map[string]interface{}{"userId": cp.UserID, "oldPassword": cp.OldPassword, "newPassword": cp.NewPassword}
}

// RoleChange is the body of the role-modify endpoint.
type RoleChange struct {
	UserID       int                  `json:"userId" validate:"required"`
	Role         role.ID              `json:"role" validate:"roleid"`
	Notification core.NotificationRef `json:"notification"`
}
