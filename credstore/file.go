package credstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

const defaultFileName = "credentials.json"

// fileDocument is the on-disk shape. Field names follow the storage layout keys
// so the file stays readable next to the web client's local storage dump.
type fileDocument struct {
	Token  string `json:"auth_token,omitempty"`
	Tenant string `json:"selectedCompany,omitempty"`
}

// FileStore defines a public type used by authkit APIs.
//
// FileStore persists the credential and tenant selector as a single JSON document.
// Writes are synchronous and atomic (write-to-temp, rename); the document survives
// restarts but carries no encryption.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the given file path. When path is empty
// the document lives at <user config dir>/leadsphere/credentials.json.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "leadsphere", defaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the stored credential, if any.
func (s *FileStore) Get() (Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil || doc.Token == "" {
		return Credential{}, false
	}
	return Credential{BearerToken: doc.Token}, true
}

// Set persists the credential.
func (s *FileStore) Set(c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, _ := s.read()
	doc.Token = c.BearerToken
	return s.write(doc)
}

// Clear removes the credential. The tenant selector is left untouched.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if doc.Token == "" {
		return nil
	}
	doc.Token = ""
	return s.write(doc)
}

// Tenant returns the selected tenant id.
func (s *FileStore) Tenant() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return ""
	}
	return doc.Tenant
}

// SetTenant persists the tenant selector. An empty id clears the selection.
func (s *FileStore) SetTenant(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, _ := s.read()
	doc.Tenant = id
	return s.write(doc)
}

func (s *FileStore) read() (fileDocument, error) {
	var doc fileDocument
	data, err := os.ReadFile(s.path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fileDocument{}, err
	}
	return doc, nil
}

func (s *FileStore) write(doc fileDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
