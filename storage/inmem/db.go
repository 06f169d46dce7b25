// Package inmemdb keeps every record in process memory. It backs the development API.
package inmemdb

import (
	"sync"

	"github.com/trezcool/capstone/core/message"
	"github.com/trezcool/capstone/core/project"
	"github.com/trezcool/capstone/core/team"
	"github.com/trezcool/capstone/core/user"
)

type (
	DB struct {
		user    *userTable
		team    *teamTable
		project *projectTable
		message *messageTable
	}

	userTable struct {
		sync.RWMutex
		pk    int
		table map[int]*user.User
	}

	teamTable struct {
		sync.RWMutex
		pk    int
		table map[int]*team.Team
	}

	projectTable struct {
		sync.RWMutex
		pk    int
		table map[int]*project.Project
	}

	messageTable struct {
		sync.RWMutex
		channelPK      int
		messagePK      int
		notificationPK int
		channels       map[int]*message.Channel
		messages       []message.Message
		notifications  []notification
	}

	notification struct {
		message.Notification
		userID int
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[int]*user.User)},
		team:    &teamTable{table: make(map[int]*team.Team)},
		project: &projectTable{table: make(map[int]*project.Project)},
		message: &messageTable{channels: make(map[int]*message.Channel)},
	}
	return db, nil
}
