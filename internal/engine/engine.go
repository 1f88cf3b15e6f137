// Package engine expands npmacro source files across a directory tree.
// It handles discovery, incremental expansion by content hash, parallel
// processing and watch mode.
package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/leapstack-labs/npmacro/internal/macro"
	"github.com/leapstack-labs/npmacro/internal/state"
)

// Default file name suffixes.
const (
	DefaultInputSuffix  = "_macro.go"
	DefaultOutputSuffix = "_expanded.go"
)

// Engine orchestrates the expansion of marker files under a root directory.
type Engine struct {
	logger   *slog.Logger
	store    state.Store
	expander *macro.Expander

	root         string
	inputSuffix  string
	outputSuffix string
	exclude      []string
	workers      int
}

// Config holds engine configuration.
type Config struct {
	// Root is the directory searched for input files.
	Root string
	// InputSuffix selects input files (default "_macro.go").
	InputSuffix string
	// OutputSuffix replaces InputSuffix in the generated file name (default "_expanded.go").
	OutputSuffix string
	// Exclude lists glob patterns matched against slash-separated paths
	// relative to Root and against base names.
	Exclude []string
	// StatePath is the path to the SQLite state database. Empty means in-memory.
	StatePath string
	// Workers limits parallel expansion (default GOMAXPROCS).
	Workers int
	// Expander configures call site expansion.
	Expander macro.Options
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine and opens its state store.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	root := cfg.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	inSuffix := cfg.InputSuffix
	if inSuffix == "" {
		inSuffix = DefaultInputSuffix
	}
	outSuffix := cfg.OutputSuffix
	if outSuffix == "" {
		outSuffix = DefaultOutputSuffix
	}
	if inSuffix == outSuffix {
		return nil, fmt.Errorf("input and output suffix are both %q", inSuffix)
	}
	if !strings.HasSuffix(inSuffix, ".go") || !strings.HasSuffix(outSuffix, ".go") {
		return nil, fmt.Errorf("suffixes must end in .go: %q, %q", inSuffix, outSuffix)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = ":memory:"
	}

	logger.Debug("initializing engine", "root", absRoot, "state_path", statePath, "workers", workers)

	store := state.NewSQLiteStore(logger)
	if err := store.Open(statePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	return &Engine{
		logger:       logger,
		store:        store,
		expander:     macro.New(cfg.Expander, logger),
		root:         absRoot,
		inputSuffix:  inSuffix,
		outputSuffix: outSuffix,
		exclude:      cfg.Exclude,
		workers:      workers,
	}, nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// OutputPath returns the generated file path for an input file.
func (e *Engine) OutputPath(input string) string {
	return strings.TrimSuffix(input, e.inputSuffix) + e.outputSuffix
}

// IsInput reports whether path names an input file.
func (e *Engine) IsInput(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, e.inputSuffix) && name != e.inputSuffix
}

// Rel returns path relative to the root, or path itself when it lies outside.
func (e *Engine) Rel(path string) string {
	rel, err := filepath.Rel(e.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// --- Getters (public accessors) ---

// Root returns the absolute root directory.
func (e *Engine) Root() string {
	return e.root
}

// GetStateStore returns the state store.
func (e *Engine) GetStateStore() state.Store {
	return e.store
}

// GetExpander returns the call site expander.
func (e *Engine) GetExpander() *macro.Expander {
	return e.expander
}
