package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// JournalFileName is the file launches are appended to inside the log
// directory.
const JournalFileName = "launches.log"

// Entry is one journal line.
type Entry struct {
	ID       string
	Time     time.Time
	Mode     string
	Model    string
	Prompt   string
	Terminal string
	Argv     []string
}

// Journal appends one JSON line per launch.
type Journal struct {
	mu   sync.Mutex
	path string
}

// NewJournal returns a journal writing to dir/launches.log.
func NewJournal(dir string) *Journal {
	return &Journal{path: filepath.Join(dir, JournalFileName)}
}

// Path is the journal file location.
func (j *Journal) Path() string { return j.path }

// Record appends e, creating the directory and file as needed.
func (j *Journal) Record(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()
	logger := zerolog.New(f)
	logger.Log().
		Time("time", e.Time).
		Str("launch_id", e.ID).
		Str("mode", e.Mode).
		Str("model", e.Model).
		Str("prompt", e.Prompt).
		Str("terminal", e.Terminal).
		Strs("argv", e.Argv).
		Send()
	return nil
}
