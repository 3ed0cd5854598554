package client

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/goliatone/go-errors"
)

// sessionFileName is the durable slot the logged-in user is cached under.
const sessionFileName = "udata.json"

// Store persists the session between runs. Load returns a zero Session and
// no error when no session has been saved yet.
type Store interface {
	Load() (Session, error)
	Save(session Session) error
	Clear() error
}

// FileStore keeps the session as a JSON file under dir. A slot that cannot
// be decoded reads as absent so a damaged file never blocks startup; the
// decode error is still surfaced for logging.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, sessionFileName)
}

func (s *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, errors.Wrap(err, errors.CategoryOperation, "failed to read session file")
	}

	session := Session{}
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, errors.Wrap(err, errors.CategoryBadInput, "failed to decode session file")
	}

	return session, nil
}

func (s *FileStore) Save(session Session) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to create session dir")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode session")
	}

	if err := os.WriteFile(s.path(), data, 0o600); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to write session file")
	}

	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.CategoryOperation, "failed to remove session file")
	}
	return nil
}
