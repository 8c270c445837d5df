package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the document in a single pretty-printed JSON file,
// rewritten wholesale on every Save. The mutex only serializes file access
// within this process; it does not make load-mutate-save cycles atomic.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(_ context.Context) (*Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if os.IsNotExist(err) {
		doc := Seed()
		if err := f.write(doc); err != nil {
			return nil, fmt.Errorf("failed to initialize data file: %w", err)
		}
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	doc := &Document{}
	if err := json.NewDecoder(file).Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode data file: %w", err)
	}
	return doc, nil
}

func (f *FileStore) Save(_ context.Context, doc *Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(doc)
}

func (f *FileStore) write(doc *Document) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.Create(f.path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
