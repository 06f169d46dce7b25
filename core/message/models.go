package message

import (
	"encoding/json"
	"time"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/role"
	"github.com/trezcool/capstone/core/user"
)

// Message types
const (
	TypeText = 1
	TypeCard = 2
)

// Channel types
const (
	ChannelPrivate = 1
	ChannelGroup   = 2
)

type Channel struct {
	ID      int
	Name    string
	Type    int
	Members []int
}

func (c Channel) HasMember(userID int) bool {
	for _, id := range c.Members {
		if id == userID {
			return true
		}
	}
	return false
}

type Message struct {
	ID        int             `json:"messageId"`
	ChannelID int             `json:"channelId"`
	SenderID  int             `json:"senderId"`
	Type      int             `json:"messageType"`
	Content   json.RawMessage `json:"messageContent"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Member is a channel member as listed by the channel detail endpoint.
type Member struct {
	UserID     int      `json:"userId"`
	UserName   string   `json:"userName"`
	UserEmail  string   `json:"userEmail"`
	UserCourse string   `json:"userCourse"`
	AvatarURL  string   `json:"avatarURL"`
	Email      string   `json:"email"`
	Role       role.ID  `json:"role"`
	UserSkills []string `json:"userSkills"`
}

func MemberOf(u user.User) Member {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	return Member{
		UserID:     u.ID,
		UserName:   u.Name,
		UserEmail:  u.Email,
		UserCourse: u.Course,
		AvatarURL:  u.AvatarURL,
		Email:      u.Email,
		Role:       u.Role,
		UserSkills: skills,
	}
}

type ChannelUsers struct {
	Users []Member `json:"users"`
}

// CardContent is the content of a shared personal card.
type CardContent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Send is the body of the send endpoint.
type Send struct {
	SenderID       int                   `json:"SenderId" validate:"required"`
	ChannelID      int                   `json:"channelId" validate:"required"`
	MessageType    int                   `json:"messageType" validate:"required,oneof=1 2"`
	MessageContent json.RawMessage       `json:"messageContent" validate:"required"`
	Notification   *core.NotificationRef `json:"notification,omitempty"`
}

// Notification is an entry of a user's notification list.
type Notification struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
