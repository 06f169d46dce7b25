package pages

import (
	"context"

	"github.com/trezcool/capstone/core/session"
	"github.com/trezcool/capstone/core/user"
)

// Profile fetches the current user's profile and caches name and avatar in the session.
func Profile(ctx context.Context, d Deps, writer *session.Writer) (user.Profile, error) {
	if !d.Session.LoggedIn() {
		return user.Profile{}, session.ErrNotLoggedIn
	}
	var p user.Profile
	if err := d.get(ctx, "v1/user/profile/"+itoa(d.Session.UserID()), &p); err != nil {
		return user.Profile{}, err
	}
	if err := writer.SetProfile(p.Name, p.Email, p.AvatarURL); err != nil {
		return user.Profile{}, err
	}
	return p, nil
}
