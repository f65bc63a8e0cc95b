package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLogger appends audit records as JSON lines to a single file.
type FileLogger struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
}

// NewFileLogger opens (or creates) the audit log file in append mode,
// creating parent directories as needed.
func NewFileLogger(path string) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	return &FileLogger{file: file, encoder: json.NewEncoder(file)}, nil
}

// Log writes one record as a JSON line.
func (l *FileLogger) Log(ctx context.Context, record *Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// Close syncs and closes the log file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.file.Sync(); err != nil {
		l.file.Close()
		return fmt.Errorf("failed to sync audit log: %w", err)
	}
	return l.file.Close()
}
