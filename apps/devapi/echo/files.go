package echoapi

import (
	"path"
	"sync"

	"github.com/google/uuid"
)

// FileStore keeps uploaded project specifications.
type FileStore interface {
	// Save stores content and returns the path it is served at.
	Save(filename string, content []byte) string
	Get(name string) ([]byte, bool)
}

type memFileStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemFileStore() FileStore {
	return &memFileStore{files: make(map[string][]byte)}
}

func (fs *memFileStore) Save(filename string, content []byte) string {
	name := uuid.New().String() + path.Ext(filename)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[name] = append([]byte(nil), content...)
	return "files/" + name
}

func (fs *memFileStore) Get(name string) ([]byte, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	content, ok := fs.files[name]
	return content, ok
}
