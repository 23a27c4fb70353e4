package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raseedhq/raseed/internal/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	token TEXT NOT NULL,
	profile TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Store keeps the session in memory and mirrored to a single-row
// sqlite table. It is the one piece of client state read from outside
// the UI loop (request commands fetch the bearer token), hence the
// lock.
type Store struct {
	mu      sync.RWMutex
	db      *sql.DB
	current Session
}

// Open opens the session database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize session schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Restore loads whatever session the store last persisted. It never
// fails: a missing row, an unreadable database or a corrupt profile
// all yield the empty session.
func (s *Store) Restore() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var token, profile string

	err := s.db.QueryRow(`SELECT token, profile FROM session WHERE id = 1`).Scan(&token, &profile)
	if err != nil {
		s.current = Session{}
		return s.current
	}

	var user Profile
	if err := json.Unmarshal([]byte(profile), &user); err != nil || token == "" || user.ID == "" {
		s.current = Session{}
		return s.current
	}

	s.current = Session{Token: token, User: user}

	return s.current
}

// Establish installs a fresh token and profile as one unit. It is the
// only way the store moves from signed-out to signed-in.
func (s *Store) Establish(token string, user Profile) error {
	if token == "" || user.ID == "" {
		return errors.New("a session needs both a token and a profile")
	}

	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(token, profile); err != nil {
		return err
	}

	s.current = Session{Token: token, User: user}

	return nil
}

// Refresh replaces the stored profile while keeping the token. With no
// token held there is nothing to refresh and the call is a no-op.
func (s *Store) Refresh(user Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Token == "" {
		return nil
	}

	if user.ID == "" {
		return errors.New("refresh needs a profile")
	}

	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	if err := s.write(s.current.Token, profile); err != nil {
		return err
	}

	s.current.User = user

	return nil
}

// Clear drops the session. The in-memory side clears before the
// persisted row, so a failed delete still leaves the process signed
// out; the error is reported for the caller to log.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Session{}

	if _, err := s.db.Exec(`DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}

	return nil
}

// Current returns the session as of now.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// Authenticated reports whether a session is held.
func (s *Store) Authenticated() bool {
	return s.Current().Authenticated()
}

// Token returns the bearer token and whether one is held. It
// implements the API client's token source.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current.Token, s.current.Token != ""
}

func (s *Store) write(token string, profile []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO session (id, token, profile, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			profile = excluded.profile,
			updated_at = excluded.updated_at`,
		token, string(profile), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	return nil
}
