// Package session holds the identity of the logged in user.
//
// Everything may read the session through a Reader. Only the holder of the Writer
// returned by Open (the login, logout and role-assignment workflows) may change it.
package session

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core/role"
)

var ErrNotLoggedIn = errors.New("please login first")

type Session struct {
	Token     string  `json:"token" mapstructure:"token"`
	UserID    int     `json:"userId" mapstructure:"userId"`
	Role      role.ID `json:"role" mapstructure:"role"`
	Name      string  `json:"userName" mapstructure:"userName"`
	Email     string  `json:"email" mapstructure:"email"`
	AvatarURL string  `json:"avatarURL" mapstructure:"avatarURL"`
}

func (s Session) LoggedIn() bool { return s.Token != "" }

// Reader is the read-only view of the session.
type Reader interface {
	Current() Session
	Token() string
	UserID() int
	Role() role.ID
	LoggedIn() bool
}

// Store persists the session across runs.
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

type Manager struct {
	mu    sync.RWMutex
	cur   Session
	store Store
}

var _ Reader = (*Manager)(nil)

// Open restores the persisted session and returns the Manager with its single Writer.
func Open(store Store) (*Manager, *Writer, error) {
	sess, err := store.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading session")
	}
	m := &Manager{cur: sess, store: store}
	return m, &Writer{m: m}, nil
}

func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

func (m *Manager) Token() string  { return m.Current().Token }
func (m *Manager) UserID() int    { return m.Current().UserID }
func (m *Manager) Role() role.ID  { return m.Current().Role }
func (m *Manager) LoggedIn() bool { return m.Current().LoggedIn() }

func (m *Manager) update(fn func(s *Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.cur
	fn(&next)
	if err := m.store.Save(next); err != nil {
		return errors.Wrap(err, "saving session")
	}
	m.cur = next
	return nil
}

// Writer mutates the session. It only comes out of Open.
type Writer struct {
	m *Manager
}

func (w *Writer) Login(s Session) error {
	if s.Token == "" {
		return errors.New("login: empty token")
	}
	return w.m.update(func(cur *Session) { *cur = s })
}

// Logout clears the whole session.
func (w *Writer) Logout() error {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	if err := w.m.store.Clear(); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	w.m.cur = Session{}
	return nil
}

func (w *Writer) SetRole(id role.ID) error {
	if !id.Valid() {
		return errors.Errorf("invalid role %d", id)
	}
	return w.m.update(func(cur *Session) { cur.Role = id })
}

func (w *Writer) SetProfile(name, email, avatarURL string) error {
	return w.m.update(func(cur *Session) {
		cur.Name = name
		cur.Email = email
		cur.AvatarURL = avatarURL
	})
}

// Reader returns the read side of the session the Writer mutates.
func (w *Writer) Reader() Reader { return w.m }
