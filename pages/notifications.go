package pages

import (
	"context"
	"net/http"

	"github.com/trezcool/capstone/core/message"
	"github.com/trezcool/capstone/listview"
)

// Notifications lists the current user's notifications.
type Notifications struct {
	List *listview.Controller[message.Notification]
	deps Deps
}

func NewNotifications(d Deps) *Notifications {
	return &Notifications{
		List: listview.New[message.Notification](
			listview.Endpoint[message.Notification](d.API, d.Session, func() string {
				return "v1/notification/get/all/" + itoa(d.Session.UserID())
			}),
			func(n message.Notification) []string { return []string{n.Content} },
		),
		deps: d,
	}
}

// Clear deletes every notification of the current user and reloads the list.
func (n *Notifications) Clear(ctx context.Context) error {
	req := n.deps.request(http.MethodDelete, "v1/notification/clear/all/"+itoa(n.deps.Session.UserID()), nil)
	if _, err := n.deps.API.Do(ctx, req); err != nil {
		return err
	}
	return n.List.Load(ctx)
}
