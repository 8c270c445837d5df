package client

import (
	"os"
	"path/filepath"
	"strings"
)

// TokenStore is the durable home of the session token between runs.
type TokenStore interface {
	Read() (string, error)
	Write(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a plain file, default under the user
// config directory.
type FileTokenStore struct {
	path string
}

func NewFileTokenStore(path string) (*FileTokenStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "companyplus", "token")
	}
	return &FileTokenStore{path: path}, nil
}

func (t *FileTokenStore) Read() (string, error) {
	data, err := os.ReadFile(t.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (t *FileTokenStore) Write(token string) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(t.path, []byte(token+"\n"), 0o600)
}

func (t *FileTokenStore) Clear() error {
	err := os.Remove(t.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
