// Package state records npmacro expansion history in SQLite.
// It tracks runs, the content hash of every expanded input file and the
// call sites found in each file.
package state

import "time"

// RunStatus is the lifecycle state of an expansion run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one invocation of the expand command.
type Run struct {
	ID          string
	Root        string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Stats       RunStats
	Error       string
}

// RunStats are the file and call site counts of a run.
type RunStats struct {
	Files    int
	Expanded int
	Skipped  int
	Failed   int
	Sites    int
}

// FileHash is the stored hash of an input file.
type FileHash struct {
	FilePath    string
	ContentHash string
	OutputPath  string
	UpdatedAt   time.Time
}

// Site is a call site recorded for an input file.
type Site struct {
	ID          int64
	RunID       string
	FilePath    string
	Line        int
	Column      int
	Source      string
	Post        string
	Leaves      int
	Operators   int
	HasFallback bool
}

// Store is the persistence interface used by the engine.
type Store interface {
	Open(path string) error
	Close() error

	CreateRun(root string) (*Run, error)
	CompleteRun(id string, status RunStatus, stats RunStats, errMsg string) error
	GetRun(id string) (*Run, error)
	GetLatestRun() (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	GetContentHash(filePath string) (string, error)
	SetContentHash(filePath, hash, outputPath string) error
	DeleteContentHash(filePath string) error
	ListContentHashes() ([]*FileHash, error)

	ReplaceSites(runID, filePath string, sites []Site) error
	ListSites(filePath string) ([]*Site, error)
}
