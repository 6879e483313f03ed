// Package promptlog records accepted prompt/reply pairs as CSV rows for
// building fine-tuning datasets.
package promptlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Kind selects which dataset file records are appended to.
type Kind string

const (
	KindReasoning Kind = "reasoning"
	KindNormal    Kind = "normal"
	KindVision    Kind = "vision"
)

// DefaultDir is the directory log files are written to by default.
const DefaultDir = "./logs"

// ParseKind validates a kind name. An empty name selects KindReasoning.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindReasoning, nil
	case KindReasoning, KindNormal, KindVision:
		return k, nil
	}
	return "", fmt.Errorf("unknown log kind %q (want reasoning, normal or vision)", s)
}

// FileName returns the CSV file name for the kind.
func (k Kind) FileName() string {
	return string(k) + "_logs.csv"
}

var header = []string{"input", "output"}

// CSVSink appends input,output rows to <dir>/<kind>_logs.csv. It is safe
// for concurrent use. Write failures are logged and never returned.
type CSVSink struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// Option configures a CSVSink.
type Option func(*CSVSink)

// WithLogger sets where write failures are reported.
func WithLogger(logger *slog.Logger) Option {
	return func(s *CSVSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a sink for kind under dir. Call Init before the first Log.
func New(dir string, kind Kind, opts ...Option) *CSVSink {
	if dir == "" {
		dir = DefaultDir
	}
	s := &CSVSink{
		path:   filepath.Join(filepath.Clean(dir), kind.FileName()),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the CSV file the sink writes to.
func (s *CSVSink) Path() string { return s.path }

// Init creates the log directory and, if the file does not exist yet,
// writes the header row.
func (s *CSVSink) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	s.logger.Info("creating prompt log", "path", s.path)
	return s.appendRecord(header)
}

// Log appends one record. Both values are trimmed; the record is skipped
// when both are empty or when they are identical.
func (s *CSVSink) Log(prompt, response string) {
	prompt = strings.TrimSpace(prompt)
	response = strings.TrimSpace(response)
	if (prompt == "" && response == "") || prompt == response {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.appendRecord([]string{prompt, response}); err != nil {
		s.logger.Error("error writing to CSV log file", "path", s.path, "error", err)
	}
}

func (s *CSVSink) appendRecord(record []string) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(record); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
