package logger

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ramux/ra-multiplex/internal/dirs"
	apperrors "github.com/ramux/ra-multiplex/internal/errors"
	"github.com/rs/zerolog/diode"
)

const (
	// LogFileName is the file created in the cache directory.
	LogFileName = "ra_multiplex.log"
	// RotateThreshold is the size at which an existing log file is deleted
	// instead of appended to.
	RotateThreshold = 1 << 20
)

// LogFilePath returns <cache dir>/ra_multiplex.log.
func LogFilePath() (string, error) {
	dir, err := dirs.Cache()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeLogging, apperrors.CodeLogDirNotFound,
			"project log path not found")
	}
	return filepath.Join(dir, LogFileName), nil
}

// logFile opens the log file at most once.  A failed open is not cached, the
// first successful one is reused by every later caller.
type logFile struct {
	mu      sync.Mutex
	path    func() (string, error)
	writer  *diode.Writer
	rotated bool
}

func newLogFile(path func() (string, error)) *logFile {
	return &logFile{path: path}
}

func (f *logFile) open() (*diode.Writer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer != nil {
		return f.writer, nil
	}

	path, err := f.path()
	if err != nil {
		return nil, err
	}
	rotated, err := rotateLogFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeLogging, apperrors.CodeLogFileIO,
			"cannot rotate log file").WithPath(path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeLogging, apperrors.CodeLogFileIO,
			"cannot create log directory").WithPath(path)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeLogging, apperrors.CodeLogFileIO,
			"cannot open log file").WithPath(path)
	}

	f.writer = newQueueWriter(file, DefaultQueueCapacity)
	f.rotated = rotated
	return f.writer, nil
}

// rotateLogFile deletes path when it is a regular file of at least
// RotateThreshold bytes.  A file that cannot be stat'ed is left for OpenFile
// to report.
func rotateLogFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, nil
	}
	if !info.Mode().IsRegular() || info.Size() < RotateThreshold {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, err
	}
	return true, nil
}
