package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMakeVerifyToken(t *testing.T) {
	gen := NewTokenGenerator("secret", 3*24*time.Hour)

	now := time.Now()
	usr := User{
		ID:        1,
		Name:      "T",
		Email:     "t@test.test",
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	_ = usr.SetPassword("pwd")

	validToken, err := gen.MakeToken(usr)
	assert.NoError(t, err)

	// generate an expired token
	dayLate := 3*24*time.Hour + (24 * time.Hour)
	NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, _ := gen.MakeToken(usr)
	NowFunc = time.Now // reset

	changedUsr := usr
	_ = changedUsr.SetPassword("other")

	otherGen := NewTokenGenerator("other secret", 3*24*time.Hour)

	tests := []struct {
		name    string
		gen     TokenGenerator
		usr     User
		token   string
		wantErr error
	}{
		{name: "no token", gen: gen, usr: usr, wantErr: ErrInvalidToken},
		{name: "invalid parts len", gen: gen, usr: usr, token: "lmaooolol", wantErr: ErrInvalidToken},
		{name: "invalid base32", gen: gen, usr: usr, token: "hahaha-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "invalid timestamp", gen: gen, usr: usr, token: "NRXWY-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "invalid token", gen: gen, usr: usr, token: "HE4TS-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "expired token", gen: gen, usr: usr, token: expiredToken, wantErr: ErrTokenExpired},
		{name: "password changed", gen: gen, usr: changedUsr, token: validToken, wantErr: ErrInvalidToken},
		{name: "other secret", gen: otherGen, usr: usr, token: validToken, wantErr: ErrInvalidToken},
		{name: "valid token", gen: gen, usr: usr, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, tt.gen.VerifyToken(tt.usr, tt.token))
		})
	}
}
