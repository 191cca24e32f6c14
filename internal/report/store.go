package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const transcriptFileName = "transcript.log"

// SessionInfo holds information about a stored transcript session.
type SessionInfo struct {
	ID        string
	Timestamp time.Time
	Path      string
}

// SessionStore persists the run transcript under a timestamped session
// directory, one session per run.
type SessionStore struct {
	baseDir    string
	sessionID  string
	sessionDir string
	f          *os.File
}

// NewSessionStore opens a new session under baseDir and creates its
// transcript file.
func NewSessionStore(baseDir string) (*SessionStore, error) {
	sessionID := time.Now().Format("20060102T150405")
	sessionDir := filepath.Join(baseDir, "transcripts", sessionID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	f, err := os.Create(filepath.Join(sessionDir, transcriptFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}
	return &SessionStore{
		baseDir:    baseDir,
		sessionID:  sessionID,
		sessionDir: sessionDir,
		f:          f,
	}, nil
}

// Writer returns the transcript file writer.
func (s *SessionStore) Writer() *os.File {
	return s.f
}

// ID returns the session identifier.
func (s *SessionStore) ID() string {
	return s.sessionID
}

// Close flushes and closes the transcript file.
func (s *SessionStore) Close() error {
	return s.f.Close()
}

// ListSessions returns all stored sessions, newest first.
func ListSessions(baseDir string) ([]SessionInfo, error) {
	root := filepath.Join(baseDir, "transcripts")
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read transcripts directory: %w", err)
	}

	var sessions []SessionInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		t, err := time.Parse("20060102T150405", e.Name())
		if err != nil {
			continue // skip non-session directories
		}
		sessions = append(sessions, SessionInfo{
			ID:        e.Name(),
			Timestamp: t,
			Path:      filepath.Join(root, e.Name(), transcriptFileName),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
	return sessions, nil
}

// ReadLatest returns the newest stored transcript.
func ReadLatest(baseDir string) (SessionInfo, []byte, error) {
	sessions, err := ListSessions(baseDir)
	if err != nil {
		return SessionInfo{}, nil, err
	}
	if len(sessions) == 0 {
		return SessionInfo{}, nil, fmt.Errorf("no stored transcripts under %s", baseDir)
	}
	data, err := os.ReadFile(sessions[0].Path)
	if err != nil {
		return SessionInfo{}, nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	return sessions[0], data, nil
}

// CleanupSessions removes all but the newest keep sessions.
func CleanupSessions(baseDir string, keep int) error {
	sessions, err := ListSessions(baseDir)
	if err != nil {
		return err
	}
	if keep < 0 {
		keep = 0
	}
	for i := keep; i < len(sessions); i++ {
		if err := os.RemoveAll(filepath.Dir(sessions[i].Path)); err != nil {
			return fmt.Errorf("failed to remove session %s: %w", sessions[i].ID, err)
		}
	}
	return nil
}
