package internal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrSessionNotFound is returned when a session id is not in the store
var ErrSessionNotFound = errors.New("session not found")

const (
	sessionKeyPrefix     = "session:"
	projectFileKeyPrefix = "projectFile:"
)

// Storage keeps working sessions and project files in sessionKV.
// Keys are session:<id> and projectFile:<sessionID>:<fileID>.
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance
func NewStorage(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// SaveSession writes a session, replacing any previous version.
// Project files are stored under their own keys.
func (s *Storage) SaveSession(session *Session) error {
	if session.ID == "" {
		return fmt.Errorf("session has no id")
	}
	record := *session
	record.ProjectFiles = nil

	data, err := json.Marshal(&record)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := PutSessionKV(s.db, sessionKeyPrefix+session.ID, string(data)); err != nil {
		return &StorageError{Path: sessionKeyPrefix + session.ID, Op: "write", Err: err}
	}
	for i := range session.ProjectFiles {
		if err := s.SaveProjectFile(session.ID, &session.ProjectFiles[i]); err != nil {
			return err
		}
	}
	return nil
}

// LoadSession reads a session and its project files
func (s *Storage) LoadSession(id string) (*Session, error) {
	value, ok, err := GetSessionKV(s.db, sessionKeyPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	session, err := parseSession(KeyValuePair{Key: sessionKeyPrefix + id, Value: value})
	if err != nil {
		return nil, err
	}
	files, err := s.LoadProjectFiles(id)
	if err != nil {
		return nil, err
	}
	session.ProjectFiles = files
	return session, nil
}

// HasSession reports whether a session id is present
func (s *Storage) HasSession(id string) (bool, error) {
	_, ok, err := GetSessionKV(s.db, sessionKeyPrefix+id)
	return ok, err
}

// ListSessions loads every stored session without project files
func (s *Storage) ListSessions() ([]*Session, error) {
	pairs, err := QuerySessionKVPrefix(s.db, sessionKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}

	sessions := make([]*Session, 0, len(pairs))
	for _, pair := range pairs {
		session, err := parseSession(pair)
		if err != nil {
			LogWarn("Skipping unreadable session %s: %v", pair.Key, err)
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// DeleteSession removes a session and its project files
func (s *Storage) DeleteSession(id string) error {
	n, err := DeleteSessionKV(s.db, sessionKeyPrefix+id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	_, err = DeleteSessionKVPrefix(s.db, projectFileKeyPrefix+id+":")
	return err
}

// SaveProjectFile writes one project file of a session
func (s *Storage) SaveProjectFile(sessionID string, pf *ProjectFile) error {
	data, err := json.Marshal(pf)
	if err != nil {
		return fmt.Errorf("failed to marshal project file: %w", err)
	}
	key := projectFileKeyPrefix + sessionID + ":" + pf.ID
	if err := PutSessionKV(s.db, key, string(data)); err != nil {
		return &StorageError{Path: key, Op: "write", Err: err}
	}
	return nil
}

// LoadProjectFiles loads all project files of a session
func (s *Storage) LoadProjectFiles(sessionID string) ([]ProjectFile, error) {
	pairs, err := QuerySessionKVPrefix(s.db, projectFileKeyPrefix+sessionID+":")
	if err != nil {
		return nil, fmt.Errorf("failed to query project files: %w", err)
	}

	files := make([]ProjectFile, 0, len(pairs))
	for _, pair := range pairs {
		parts := splitKey(pair.Key, projectFileKeyPrefix)
		if len(parts) != 3 {
			continue
		}
		var pf ProjectFile
		if err := json.Unmarshal([]byte(pair.Value), &pf); err != nil {
			LogWarn("Skipping unreadable project file %s: %v", pair.Key, err)
			continue
		}
		files = append(files, pf)
	}
	return files, nil
}

func parseSession(pair KeyValuePair) (*Session, error) {
	var session Session
	dec := json.NewDecoder(strings.NewReader(pair.Value))
	dec.UseNumber()
	if err := dec.Decode(&session); err != nil {
		return nil, &StorageError{Path: pair.Key, Op: "parse", Err: err}
	}
	for k, v := range session.Settings {
		session.Settings[k] = normalizeValue(v)
	}
	return &session, nil
}

// splitKey splits a key by prefix and returns the parts, with an empty
// leading element standing in for the prefix
func splitKey(key, prefix string) []string {
	if !strings.HasPrefix(key, prefix) {
		return nil
	}
	return append([]string{""}, strings.Split(key[len(prefix):], ":")...)
}
