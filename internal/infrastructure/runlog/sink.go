package runlog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"icecatimport/internal/errs"
	"icecatimport/internal/ports"
)

const (
	CurrentFileName = "icecat_recurring_current_import.log"
	LastFileName    = "icecat_last_import.log"
)

// FileSink keeps the current run log in dir and rotates it onto the last-import log.
type FileSink struct {
	dir string

	mu   sync.Mutex
	file *os.File
}

var _ ports.RunLogSink = (*FileSink)(nil)

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: strings.TrimSpace(dir)}
}

func (s *FileSink) CurrentPath() string {
	return filepath.Join(s.dir, CurrentFileName)
}

func (s *FileSink) LastPath() string {
	return filepath.Join(s.dir, LastFileName)
}

func (s *FileSink) Open(ctx context.Context) (io.Writer, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}

	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return nil, errs.Wrapf(err, "create log directory %q", s.dir)
		}
	}

	f, err := os.OpenFile(s.CurrentPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errs.Wrap(err, "open current run log")
	}
	s.file = f
	return f, nil
}

func (s *FileSink) Rotate(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		if err := s.file.Close(); err != nil {
			return errs.Wrap(err, "close current run log")
		}
		s.file = nil
	}

	if _, err := os.Stat(s.CurrentPath()); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := os.Remove(s.LastPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errs.Wrap(err, "remove last import log")
	}
	if err := os.Rename(s.CurrentPath(), s.LastPath()); err != nil {
		return errs.Wrap(err, "rename current run log")
	}
	return nil
}
