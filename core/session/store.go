package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/trezcool/capstone/core/role"
)

// MemoryStore keeps the session for the lifetime of the process.
type MemoryStore struct {
	mu   sync.Mutex
	sess Session
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(initial ...Session) *MemoryStore {
	st := new(MemoryStore)
	if len(initial) > 0 {
		st.sess = initial[0]
	}
	return st
}

func (st *MemoryStore) Load() (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sess, nil
}

func (st *MemoryStore) Save(s Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sess = s
	return nil
}

func (st *MemoryStore) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sess = Session{}
	return nil
}

// FileStore persists the session as a JSON file readable by the owner only.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (st *FileStore) Load() (Session, error) {
	if _, err := os.Stat(st.path); err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, err
	}

	v := st.viper()
	if err := v.ReadInConfig(); err != nil {
		return Session{}, errors.Wrapf(err, "reading %s", st.path)
	}
	return Session{
		Token:     v.GetString("token"),
		UserID:    v.GetInt("userId"),
		Role:      role.ID(v.GetInt("role")),
		Name:      v.GetString("userName"),
		Email:     v.GetString("email"),
		AvatarURL: v.GetString("avatarURL"),
	}, nil
}

func (st *FileStore) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0o700); err != nil {
		return err
	}

	v := st.viper()
	v.Set("token", s.Token)
	v.Set("userId", s.UserID)
	v.Set("role", int(s.Role))
	v.Set("userName", s.Name)
	v.Set("email", s.Email)
	v.Set("avatarURL", s.AvatarURL)
	if err := v.WriteConfigAs(st.path); err != nil {
		return errors.Wrapf(err, "writing %s", st.path)
	}
	return os.Chmod(st.path, 0o600)
}

func (st *FileStore) Clear() error {
	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (st *FileStore) viper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(st.path)
	v.SetConfigType("json")
	return v
}
