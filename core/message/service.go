package message

import (
	"errors"
	"net/mail"
	"time"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/user"
)

var (
	// errors
	ErrChannelNotFound = errors.New("channel not found")
	ErrNotMember       = errors.New("sender is not a member of this channel")
)

type (
	Repository interface {
		CreateChannel(c Channel) (Channel, error)
		GetChannelByID(id int) (Channel, error)
		CreateMessage(m Message) (Message, error)
		ChannelMessages(channelID int) ([]Message, error)
		CreateNotification(n Notification, userIDs ...int) (Notification, error)
		UserNotifications(userID int) ([]Notification, error)
		ClearNotifications(userID int) error
	}

	// TeamMembers resolves the student ids of a team.
	TeamMembers func(teamID int) ([]int, error)

	Service struct {
		repo     Repository
		users    user.Repository
		members  TeamMembers
		notifier core.Notifier
	}
)

func NewService(repo Repository, users user.Repository, members TeamMembers, notifier core.Notifier) *Service {
	return &Service{repo: repo, users: users, members: members, notifier: notifier}
}

func (svc *Service) CreateChannel(c Channel) (Channel, error) {
	c.Name = core.CleanString(c.Name)
	return svc.repo.CreateChannel(c)
}

func (svc *Service) ChannelUsers(channelID int) (ChannelUsers, error) {
	c, err := svc.repo.GetChannelByID(channelID)
	if err != nil {
		return ChannelUsers{}, err
	}
	res := ChannelUsers{Users: make([]Member, 0, len(c.Members))}
	for _, id := range c.Members {
		u, err := svc.users.GetUserByID(id)
		if err != nil {
			if err == user.ErrNotFound {
				continue
			}
			return ChannelUsers{}, err
		}
		res.Users = append(res.Users, MemberOf(u))
	}
	return res, nil
}

func (svc *Service) Messages(channelID int) ([]Message, error) {
	if _, err := svc.repo.GetChannelByID(channelID); err != nil {
		return nil, err
	}
	return svc.repo.ChannelMessages(channelID)
}

// Send posts a message and delivers its notification, if any.
func (svc *Service) Send(s Send) (Message, error) {
	c, err := svc.repo.GetChannelByID(s.ChannelID)
	if err != nil {
		return Message{}, err
	}
	if !c.HasMember(s.SenderID) {
		return Message{}, ErrNotMember
	}
	msg, err := svc.repo.CreateMessage(Message{
		ChannelID: s.ChannelID,
		SenderID:  s.SenderID,
		Type:      s.MessageType,
		Content:   s.MessageContent,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Message{}, err
	}
	if s.Notification != nil {
		if err := svc.Notify(*s.Notification); err != nil {
			return Message{}, err
		}
	}
	return msg, nil
}

// Notify stores ref for each recipient and e-mails them a copy.
func (svc *Service) Notify(ref core.NotificationRef) error {
	if ref.Content == "" || ref.To.IsEmpty() {
		return nil
	}
	ids := append([]int(nil), ref.To.Users...)
	if ref.To.TeamID != 0 {
		members, err := svc.members(ref.To.TeamID)
		if err != nil {
			return err
		}
		ids = append(ids, members...)
	}
	ids = uniqueInts(ids)
	if len(ids) == 0 {
		return nil
	}

	if _, err := svc.repo.CreateNotification(Notification{Content: ref.Content, CreatedAt: time.Now().UTC()}, ids...); err != nil {
		return err
	}

	msgs := make([]*core.NotificationMessage, 0, len(ids))
	for _, id := range ids {
		u, err := svc.users.GetUserByID(id)
		if err != nil || u.Email == "" {
			continue
		}
		msgs = append(msgs, &core.NotificationMessage{
			To:      []mail.Address{{Name: u.Name, Address: u.Email}},
			Subject: "New notification",
			Body:    ref.Content,
		})
	}
	svc.notifier.SendMessages(msgs...)
	return nil
}

func (svc *Service) Notifications(userID int) ([]Notification, error) {
	return svc.repo.UserNotifications(userID)
}

func (svc *Service) ClearNotifications(userID int) error {
	return svc.repo.ClearNotifications(userID)
}

func uniqueInts(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
