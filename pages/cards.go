package pages

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/message"
	"github.com/trezcool/capstone/core/session"
	"github.com/trezcool/capstone/core/user"
	"github.com/trezcool/capstone/listview"
)

// CardPicker lists students and shares personal cards into a channel.
type CardPicker struct {
	Students *listview.Controller[user.Student]
	deps     Deps
}

func NewCardPicker(d Deps) *CardPicker {
	return &CardPicker{
		Students: listview.New[user.Student](
			listview.Endpoint[user.Student](d.API, d.Session, func() string { return "v1/user/student/list" }),
			func(s user.Student) []string { return []string{s.Email} },
		),
		deps: d,
	}
}

// Share posts card into channelID as the current user and notifies the other members.
func (cp *CardPicker) Share(ctx context.Context, channelID int, card user.Student) (message.Message, error) {
	sess := cp.deps.Session.Current()
	if !sess.LoggedIn() {
		return message.Message{}, session.ErrNotLoggedIn
	}

	var members message.ChannelUsers
	if err := cp.deps.get(ctx, "v1/message/"+itoa(channelID)+"/users/detail", &members); err != nil {
		return message.Message{}, err
	}
	to := make([]int, 0, len(members.Users))
	for _, m := range members.Users {
		if m.UserID != sess.UserID {
			to = append(to, m.UserID)
		}
	}

	content, err := json.Marshal(message.CardContent{Name: card.UserName, Email: card.Email})
	if err != nil {
		return message.Message{}, errors.Wrap(err, "encoding card")
	}
	sender := sess.Name
	if sender == "" {
		sender = sess.Email
	}
	send := message.Send{
		SenderID:       sess.UserID,
		ChannelID:      channelID,
		MessageType:    message.TypeCard,
		MessageContent: content,
	}
	if len(to) > 0 {
		ref := core.NotifyUsers(sender+" shared a personal card.", to...)
		send.Notification = &ref
	}

	payload, err := cp.deps.API.Do(ctx, cp.deps.request(http.MethodPost, "v1/message/send", send))
	if err != nil {
		return message.Message{}, err
	}
	var msg message.Message
	if err := payload.Decode(&msg); err != nil {
		return message.Message{}, errors.Wrap(err, "decoding message")
	}
	return msg, nil
}
