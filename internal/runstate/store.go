package runstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
)

// Store persists the run record with file locking, so an aborted or
// crashed run can still be unwound later by `tourneyprobe cleanup`.
// The record is saved after every successful create and removed after a
// fully clean teardown.
type Store struct {
	runPath  string
	lockPath string
	fileLock *flock.Flock
	locked   bool
}

// NewStore creates a Store under the given directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	runPath := filepath.Join(dir, "run.json")
	lockPath := filepath.Join(dir, "run.lock")

	return &Store{
		runPath:  runPath,
		lockPath: lockPath,
		fileLock: flock.New(lockPath),
	}, nil
}

// Lock acquires an exclusive lock on the run file.
// It writes the current PID to the lock file on success.
// Returns an error if another process holds the lock.
func (s *Store) Lock() error {
	if s.locked {
		return nil
	}

	locked, err := s.fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		// Read PID from lock file for error message
		pid, _ := s.readLockPID()
		if pid > 0 {
			return fmt.Errorf("another tourneyprobe process (PID %d) is running", pid)
		}
		return errors.New("another tourneyprobe process is running")
	}

	if err := s.writeLockPID(); err != nil {
		_ = s.fileLock.Unlock()
		return fmt.Errorf("failed to write PID to lock file: %w", err)
	}

	s.locked = true
	return nil
}

// Unlock releases the lock.
func (s *Store) Unlock() error {
	if !s.locked {
		return nil
	}

	if err := s.fileLock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	s.locked = false
	return nil
}

// Load reads the record from disk.
// Returns a new empty record if the file doesn't exist.
func (s *Store) Load() (*Record, error) {
	data, err := os.ReadFile(s.runPath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRecord(), nil
		}
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}

	return &rec, nil
}

// Exists reports whether a persisted run record is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.runPath)
	return err == nil
}

// Save writes the record to disk atomically.
func (s *Store) Save(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	// Write to temp file first
	tmpPath := s.runPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp run file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, s.runPath); err != nil {
		os.Remove(tmpPath) // Clean up on failure
		return fmt.Errorf("failed to rename run file: %w", err)
	}

	return nil
}

// Remove deletes the persisted record after a clean teardown.
func (s *Store) Remove() error {
	if err := os.Remove(s.runPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove run file: %w", err)
	}
	return nil
}

// RunPath returns the path to the run file.
func (s *Store) RunPath() string {
	return s.runPath
}

func (s *Store) readLockPID() (int, error) {
	data, err := os.ReadFile(s.lockPath)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, err
	}
	return pid, nil
}

func (s *Store) writeLockPID() error {
	pid := os.Getpid()
	return os.WriteFile(s.lockPath, []byte(strconv.Itoa(pid)), 0644)
}
