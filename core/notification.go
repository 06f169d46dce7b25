package core

import "net/mail"

// Recipients addresses a notification to users or to every member of a team.
type Recipients struct {
	Users  []int `json:"users,omitempty"`
	TeamID int   `json:"teamId,omitempty"`
}

func (r Recipients) IsEmpty() bool { return len(r.Users) == 0 && r.TeamID == 0 }

// NotificationRef is the side-channel notification attached to a mutation request.
type NotificationRef struct {
	Content string     `json:"content"`
	To      Recipients `json:"to"`
}

func NotifyUsers(content string, ids ...int) NotificationRef {
	return NotificationRef{Content: content, To: Recipients{Users: ids}}
}

func NotifyTeam(content string, teamID int) NotificationRef {
	return NotificationRef{Content: content, To: Recipients{TeamID: teamID}}
}

// NotificationMessage is an e-mail copy of a notification.
type NotificationMessage struct {
	To      []mail.Address
	Subject string
	Body    string
}

func (m *NotificationMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *NotificationMessage) HasContent() bool    { return m.Body != "" }

// Notifier is any service that can deliver notifications out of band.
type Notifier interface {
	// SendMessages sends messages concurrently
	SendMessages(messages ...*NotificationMessage)
}
