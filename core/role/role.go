// Package role holds the platform's static role table.
package role

import (
	"strconv"
	"strings"
)

// ID is the numeric role sent over the wire.
type ID int

const (
	Student ID = iota + 1
	Tutor
	Client
	Coordinator
	Administrator
)

// Style is how a role badge is painted.
type Style struct {
	Background string `json:"background"`
	Color      string `json:"color"`
}

type Role struct {
	ID    ID     `json:"id"`
	Label string `json:"label"`
	Style Style  `json:"style"`
}

var roles = [...]Role{
	{ID: Student, Label: "Student", Style: Style{Background: "#e0f7fa", Color: "#006064"}},
	{ID: Tutor, Label: "Tutor", Style: Style{Background: "#e1bee7", Color: "#6a1b9a"}},
	{ID: Client, Label: "Client", Style: Style{Background: "#fff9c4", Color: "#f57f17"}},
	{ID: Coordinator, Label: "Coordinator", Style: Style{Background: "#ffe0b2", Color: "#e65100"}},
	{ID: Administrator, Label: "Administrator", Style: Style{Background: "#ffcdd2", Color: "#b71c1c"}},
}

// Lookup returns the Role registered for id.
func Lookup(id ID) (Role, bool) {
	if id < Student || id > Administrator {
		return Role{}, false
	}
	return roles[id-1], true
}

// All returns every role ordered by id.
func All() []Role {
	all := make([]Role, len(roles))
	copy(all, roles[:])
	return all
}

// Parse accepts a role id ("4") or a label ("coordinator").
func Parse(s string) (ID, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := Lookup(ID(n)); ok {
			return ID(n), true
		}
		return 0, false
	}
	for _, r := range roles {
		if strings.EqualFold(r.Label, s) {
			return r.ID, true
		}
	}
	return 0, false
}

func (id ID) Valid() bool {
	_, ok := Lookup(id)
	return ok
}

func (id ID) String() string {
	if r, ok := Lookup(id); ok {
		return r.Label
	}
	return "Unknown"
}

func (id ID) Style() Style {
	r, _ := Lookup(id)
	return r.Style
}

// IsStaff reports whether the role manages projects (everyone but students and clients).
func (id ID) IsStaff() bool {
	return id == Tutor || id == Coordinator || id == Administrator
}
