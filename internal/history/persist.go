package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"statsdash/internal/stats"
)

const (
	currentHistoryFile = "current_stats.txt"
	oldHistoryFile     = "old_stats.txt"

	// Snapshot lines are normally a few KB, but a host with many mounts
	// and interfaces can go well past bufio's default token size.
	maxLineBytes = 1 << 20
)

// Store persists consolidated snapshots as newline-delimited JSON in a
// pair of files under dir. The active file is renamed over the old one
// once it reaches half the size limit, bounding total disk usage to
// roughly sizeLimit bytes across both files.
type Store struct {
	dir       string
	sizeLimit int64
}

// NewStore creates a store writing under dir with the given total size
// limit in bytes.
func NewStore(dir string, sizeLimitBytes int64) *Store {
	return &Store{dir: dir, sizeLimit: sizeLimitBytes}
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

// Append serializes one snapshot and appends it to the current history
// file, creating the directory and file as needed and rotating first if
// the current file has reached its half of the size budget.
func (s *Store) Append(snapshot stats.Snapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("history: create directory %s: %w", s.dir, err)
	}

	currentPath := filepath.Join(s.dir, currentHistoryFile)

	// Half the limit per file, since rotation swaps between two files.
	if info, err := os.Stat(currentPath); err == nil && info.Size() >= s.sizeLimit/2 {
		if err := os.Rename(currentPath, filepath.Join(s.dir, oldHistoryFile)); err != nil {
			return fmt.Errorf("history: rotate %s: %w", currentPath, err)
		}
	}

	line, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("history: encode snapshot: %w", err)
	}

	file, err := os.OpenFile(currentPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("history: open %s: %w", currentPath, err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("history: write %s: %w", currentPath, err)
	}
	return nil
}

// Load reads the persisted history back in chronological order: the old
// file first, then the current one, each top to bottom. A line that
// fails to parse aborts the whole load; a corrupt log must not be
// presented as a shorter, seemingly valid history.
func (s *Store) Load() ([]stats.Snapshot, error) {
	var snapshots []stats.Snapshot
	for _, name := range []string{oldHistoryFile, currentHistoryFile} {
		loaded, err := loadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, loaded...)
	}
	return snapshots, nil
}

func loadFile(path string) ([]stats.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	defer file.Close()

	var snapshots []stats.Snapshot
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var snapshot stats.Snapshot
		if err := json.Unmarshal(line, &snapshot); err != nil {
			return nil, fmt.Errorf("history: parse %s: %w", path, err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("history: read %s: %w", path, err)
	}
	return snapshots, nil
}
