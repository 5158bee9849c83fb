package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger that writes to a timestamped file inside dir. An empty
// dir yields a logger that discards everything. The returned closer should be
// closed when logging is no longer needed.
func New(dir string) (*log.Logger, io.Closer, error) {
	if dir == "" {
		return log.New(io.Discard, "", 0), nopCloser{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	filePath := filepath.Join(dir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.New(file, "", log.LstdFlags|log.Lmicroseconds)
	return logger, file, nil
}
