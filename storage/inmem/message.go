package inmemdb

import (
	"sort"

	"github.com/trezcool/capstone/core/message"
)

type messageRepository struct {
	db *messageTable
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *DB) message.Repository {
	return &messageRepository{db: db.message}
}

func (repo *messageRepository) CreateChannel(c message.Channel) (message.Channel, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.channelPK++
	c.ID = repo.db.channelPK
	c.Members = append([]int(nil), c.Members...)
	repo.db.channels[c.ID] = &c
	return c, nil
}

func (repo *messageRepository) GetChannelByID(id int) (message.Channel, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.channels[id]; ok {
		return *c, nil
	}
	return message.Channel{}, message.ErrChannelNotFound
}

func (repo *messageRepository) CreateMessage(m message.Message) (message.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.messagePK++
	m.ID = repo.db.messagePK
	repo.db.messages = append(repo.db.messages, m)
	return m, nil
}

func (repo *messageRepository) ChannelMessages(channelID int) ([]message.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	msgs := make([]message.Message, 0)
	for _, m := range repo.db.messages {
		if m.ChannelID == channelID {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

func (repo *messageRepository) CreateNotification(n message.Notification, userIDs ...int) (message.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.notificationPK++
	n.ID = repo.db.notificationPK
	for _, id := range userIDs {
		repo.db.notifications = append(repo.db.notifications, notification{Notification: n, userID: id})
	}
	return n, nil
}

// UserNotifications returns the notifications of a user, newest first.
func (repo *messageRepository) UserNotifications(userID int) ([]message.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notes := make([]message.Notification, 0)
	for _, n := range repo.db.notifications {
		if n.userID == userID {
			notes = append(notes, n.Notification)
		}
	}
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].ID > notes[j].ID })
	return notes, nil
}

func (repo *messageRepository) ClearNotifications(userID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	kept := repo.db.notifications[:0]
	for _, n := range repo.db.notifications {
		if n.userID != userID {
			kept = append(kept, n)
		}
	}
	repo.db.notifications = kept
	return nil
}
