package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore reads captured headers from a YAML file shaped like:
//
//	monarch:
//	  Authorization: Token abc123
//	uber_rides:
//	  Cookie: sid=...
//	  x-csrf-token: x
//
// The file is re-read on every call so a refreshed capture takes effect
// without restarting.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file need not exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

type fileContents map[Service]map[string]string

func (f *FileStore) read() (fileContents, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileContents{}, nil
	}
	if err != nil {
		return nil, err
	}
	contents := fileContents{}
	if err := yaml.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return contents, nil
}

// Headers implements Provider.
func (f *FileStore) Headers(ctx context.Context, service Service) (http.Header, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	contents, err := f.read()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	h := make(http.Header)
	for k, v := range contents[service] {
		if v != "" {
			h.Set(k, v)
		}
	}
	if !usable(service, h) {
		return nil, missing(service)
	}
	return h, nil
}

// Save replaces the stored headers for one service. The file is written
// with owner-only permissions.
func (f *FileStore) Save(service Service, headers map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	contents, err := f.read()
	if err != nil {
		return err
	}
	if len(headers) == 0 {
		delete(contents, service)
	} else {
		contents[service] = headers
	}

	data, err := yaml.Marshal(contents)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(f.path, data, 0o600)
}
