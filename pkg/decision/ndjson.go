package decision

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// NDJSONSink appends records to a newline-delimited JSON file. Writes are
// serialized; readers of the file get one complete record per line.
type NDJSONSink struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewNDJSONSink opens (or creates) the log file at path.
func NewNDJSONSink(path string) (*NDJSONSink, error) {
	if path == "" {
		return nil, fmt.Errorf("decision: sink path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("decision: create sink dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("decision: open sink: %w", err)
	}
	return &NDJSONSink{path: path, file: f}, nil
}

// Append writes one record line.
func (s *NDJSONSink) Append(rec Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("decision: marshal record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return fmt.Errorf("decision: sink closed")
	}
	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("decision: write record: %w", err)
	}
	return nil
}

// Clear rewrites the file without the user's records. The rewrite goes
// through a temp file and rename so a crash mid-clear leaves either the old
// or the new file, never a torn one.
func (s *NDJSONSink) Clear(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return fmt.Errorf("decision: sink closed")
	}

	src, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("decision: open sink for clear: %w", err)
	}
	defer src.Close()

	tmpPath := s.path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("decision: create temp sink: %w", err)
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	writer := bufio.NewWriter(tmp)
	for scanner.Scan() {
		line := scanner.Bytes()
		var rec Record
		if err := json.Unmarshal(line, &rec); err == nil && rec.UserID == userID {
			continue
		}
		writer.Write(line)
		writer.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("decision: scan sink: %w", err)
	}
	if err := writer.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("decision: flush temp sink: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("decision: close temp sink: %w", err)
	}

	s.file.Close()
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("decision: swap sink: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		s.file = nil
		return fmt.Errorf("decision: reopen sink: %w", err)
	}
	s.file = f
	return nil
}

// Close closes the underlying file.
func (s *NDJSONSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
