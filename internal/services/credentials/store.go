package credentials

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	DefaultUsername = "admin"
	// DefaultPassword is the well-known bootstrap password written when no
	// credential file exists.
	DefaultPassword = "admin123"
)

var (
	ErrEmptyUsername = errors.New("username must not be empty")

	// Login failures; the messages are shown to the user as-is.
	ErrEmptyFields        = errors.New("Please fill all fields")
	ErrInvalidCredentials = errors.New("Invalid credentials")
)

// HashPassword returns the hex SHA-256 digest stored in the credential file.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// DefaultUsers returns the mapping used when the credential file is missing or unreadable.
func DefaultUsers() map[string]string {
	return map[string]string{DefaultUsername: HashPassword(DefaultPassword)}
}

// Store is a flat username -> password hash mapping persisted as JSON.
type Store struct {
	path  string
	mu    sync.RWMutex
	users map[string]string
}

// NewStore loads the credential file at path. Load never fails: a missing or
// corrupt file yields the default admin entry.
func NewStore(path string) *Store {
	s := &Store{path: path}
	s.Load()
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load (re)reads the backing file and returns a copy of the mapping.
func (s *Store) Load() map[string]string {
	users, err := readUsers(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", s.path).Msg("Credential file unreadable, using default credentials")
		}
		users = DefaultUsers()
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()

	return s.Users()
}

// Users returns a copy of the loaded mapping.
func (s *Store) Users() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.users))
	for k, v := range s.users {
		out[k] = v
	}
	return out
}

// Usernames returns the known usernames in sorted order.
func (s *Store) Usernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Authenticate reports whether username exists and password hashes to its stored digest.
func (s *Store) Authenticate(username, password string) bool {
	s.mu.RLock()
	stored, ok := s.users[username]
	s.mu.RUnlock()

	return ok && stored == HashPassword(password)
}

// Check validates a login attempt and returns ErrEmptyFields or
// ErrInvalidCredentials on failure.
func (s *Store) Check(username, password string) error {
	if username == "" || password == "" {
		return ErrEmptyFields
	}
	if !s.Authenticate(username, password) {
		return ErrInvalidCredentials
	}
	return nil
}

// EnsureFile writes the default store when the backing file does not exist.
// It reports whether a file was created.
func (s *Store) EnsureFile() (bool, error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat credential file: %w", err)
	}

	if err := writeUsers(s.path, DefaultUsers()); err != nil {
		return false, err
	}
	log.Info().Str("path", s.path).Str("username", DefaultUsername).Msg("Created default credential file")
	s.Load()
	return true, nil
}

// SetPassword adds or replaces a user and persists the store. It is the
// administrative write path; the application itself never calls it.
func (s *Store) SetPassword(username, password string) error {
	if username == "" {
		return ErrEmptyUsername
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.users)+1)
	for k, v := range s.users {
		next[k] = v
	}
	next[username] = HashPassword(password)

	if err := writeUsers(s.path, next); err != nil {
		return err
	}
	s.users = next
	return nil
}

func readUsers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var users map[string]string
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse credential file: %w", err)
	}
	if users == nil {
		return nil, fmt.Errorf("parse credential file: not a JSON object")
	}
	return users, nil
}

func writeUsers(path string, users map[string]string) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create credential dir: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename credential file: %w", err)
	}
	return nil
}
