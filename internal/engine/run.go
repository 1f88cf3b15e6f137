package engine

// run.go - expansion orchestration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/npmacro/internal/macro"
	"github.com/leapstack-labs/npmacro/internal/state"
)

// FileStatus is the outcome of processing one input file.
type FileStatus string

// File statuses.
const (
	FileExpanded FileStatus = "expanded"
	FileSkipped  FileStatus = "skipped"
	FileFailed   FileStatus = "failed"
	FileStale    FileStatus = "stale"
	FileCurrent  FileStatus = "current"
)

// FileOutcome describes what happened to one input file.
type FileOutcome struct {
	Path       string
	OutputPath string
	Status     FileStatus
	Sites      int
	Err        error
}

// ExpandOptions configures an expansion run.
type ExpandOptions struct {
	// Force ignores stored content hashes and re-expands every file.
	Force bool
	// Paths restricts the run to these input files. Empty means discover.
	Paths []string
}

// ExpandResult contains the outcome of an expansion run.
type ExpandResult struct {
	Run      *state.Run
	Files    []FileOutcome
	Stats    state.RunStats
	Duration time.Duration
}

// HasErrors returns true if any file failed.
func (r *ExpandResult) HasErrors() bool {
	return r.Stats.Failed > 0
}

// Summary returns a human-readable summary.
func (r *ExpandResult) Summary() string {
	return fmt.Sprintf("Files: %d total (%d expanded, %d skipped, %d failed) | Sites: %d | Duration: %s",
		r.Stats.Files, r.Stats.Expanded, r.Stats.Skipped, r.Stats.Failed, r.Stats.Sites,
		r.Duration.Round(time.Millisecond))
}

// Expand expands every changed input file and writes its output. Files are
// processed in parallel; a failing file does not stop the others. The
// returned error joins all file errors.
func (e *Engine) Expand(ctx context.Context, opts ExpandOptions) (*ExpandResult, error) {
	start := time.Now()
	e.logger.Info("starting expansion", "root", e.root, "force", opts.Force)

	files, err := e.inputs(opts.Paths)
	if err != nil {
		return nil, err
	}

	run, err := e.store.CreateRun(e.root)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	e.logger.Debug("created run", "run_id", run.ID, "files", len(files))

	outcomes := make([]FileOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = e.expandFile(run.ID, file, opts.Force)
			return nil
		})
	}
	waitErr := g.Wait()

	if len(opts.Paths) == 0 && waitErr == nil {
		e.prune(run.ID, files)
	}

	result := &ExpandResult{Files: outcomes}
	var fileErrs []error
	for _, o := range outcomes {
		result.Stats.Files++
		switch o.Status {
		case FileExpanded:
			result.Stats.Expanded++
			result.Stats.Sites += o.Sites
		case FileSkipped:
			result.Stats.Skipped++
		case FileFailed:
			result.Stats.Failed++
			fileErrs = append(fileErrs, o.Err)
		}
	}
	if waitErr != nil {
		fileErrs = append(fileErrs, waitErr)
	}
	runErr := errors.Join(fileErrs...)

	status, errMsg := state.RunStatusCompleted, ""
	if runErr != nil {
		status, errMsg = state.RunStatusFailed, runErr.Error()
	}
	if err := e.store.CompleteRun(run.ID, status, result.Stats, errMsg); err != nil {
		e.logger.Warn("failed to complete run", "run_id", run.ID, "error", err.Error())
	}
	result.Run, _ = e.store.GetRun(run.ID)
	result.Duration = time.Since(start)

	e.logger.Info("expansion completed",
		"run_id", run.ID,
		"files", result.Stats.Files,
		"expanded", result.Stats.Expanded,
		"skipped", result.Stats.Skipped,
		"failed", result.Stats.Failed,
		"duration_ms", result.Duration.Milliseconds())

	return result, runErr
}

// expandFile processes one input file inside a run.
func (e *Engine) expandFile(runID, file string, force bool) FileOutcome {
	out := FileOutcome{Path: file, OutputPath: e.OutputPath(file)}

	needsExpand, hash, content, err := e.shouldExpandFile(file, force)
	if err != nil {
		out.Status, out.Err = FileFailed, err
		return out
	}
	if !needsExpand {
		e.logger.Debug("skipping unchanged file", "path", e.Rel(file))
		out.Status = FileSkipped
		return out
	}

	res, err := e.expander.ExpandSource(file, content)
	if err != nil {
		e.logger.Debug("expansion error", "path", e.Rel(file), "error", err.Error())
		out.Status, out.Err = FileFailed, err
		return out
	}

	if err := writeIfChanged(out.OutputPath, res.Output); err != nil {
		out.Status, out.Err = FileFailed, err
		return out
	}

	if err := e.store.ReplaceSites(runID, file, toStateSites(res.Sites)); err != nil {
		out.Status, out.Err = FileFailed, fmt.Errorf("failed to record sites for %s: %w", file, err)
		return out
	}
	if err := e.store.SetContentHash(file, hash, out.OutputPath); err != nil {
		out.Status, out.Err = FileFailed, fmt.Errorf("failed to record hash for %s: %w", file, err)
		return out
	}

	e.logger.Debug("expanded file", "path", e.Rel(file), "sites", len(res.Sites))
	out.Status, out.Sites = FileExpanded, len(res.Sites)
	return out
}

// prune forgets files that are tracked in the state store but no longer
// discovered. Their generated output is left on disk.
func (e *Engine) prune(runID string, discovered []string) {
	hashes, err := e.store.ListContentHashes()
	if err != nil {
		e.logger.Warn("failed to list content hashes", "error", err.Error())
		return
	}
	present := make(map[string]bool, len(discovered))
	for _, f := range discovered {
		present[f] = true
	}
	for _, h := range hashes {
		if present[h.FilePath] {
			continue
		}
		e.logger.Info("forgetting removed input", "path", e.Rel(h.FilePath), "output", e.Rel(h.OutputPath))
		if err := e.store.DeleteContentHash(h.FilePath); err != nil {
			e.logger.Warn("failed to delete content hash", "path", h.FilePath, "error", err.Error())
		}
		if err := e.store.ReplaceSites(runID, h.FilePath, nil); err != nil {
			e.logger.Warn("failed to delete sites", "path", h.FilePath, "error", err.Error())
		}
	}
}

// CheckResult is the outcome of Check.
type CheckResult struct {
	Files []FileOutcome
}

// Stale returns the files whose output is missing or out of date.
func (r *CheckResult) Stale() []FileOutcome {
	var stale []FileOutcome
	for _, f := range r.Files {
		if f.Status == FileStale {
			stale = append(stale, f)
		}
	}
	return stale
}

// OK reports whether every output is current.
func (r *CheckResult) OK() bool {
	for _, f := range r.Files {
		if f.Status != FileCurrent {
			return false
		}
	}
	return true
}

// Check expands every input file in memory and compares the result with the
// output on disk. Nothing is written and no run is recorded.
func (e *Engine) Check(ctx context.Context, paths []string) (*CheckResult, error) {
	files, err := e.inputs(paths)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{Files: make([]FileOutcome, len(files))}
	var mu sync.Mutex
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := e.checkFile(file)
			result.Files[i] = o
			if o.Err != nil {
				mu.Lock()
				errs = append(errs, o.Err)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	e.logger.Info("check completed", "files", len(files), "stale", len(result.Stale()))
	return result, errors.Join(errs...)
}

func (e *Engine) checkFile(file string) FileOutcome {
	out := FileOutcome{Path: file, OutputPath: e.OutputPath(file)}

	res, err := e.Render(file)
	if err != nil {
		out.Status, out.Err = FileFailed, err
		return out
	}
	out.Sites = len(res.Sites)

	existing, err := os.ReadFile(out.OutputPath)
	if err != nil || !bytes.Equal(existing, res.Output) {
		out.Status = FileStale
		return out
	}
	out.Status = FileCurrent
	return out
}

// Render expands one file without writing anything.
func (e *Engine) Render(file string) (*macro.FileResult, error) {
	content, err := os.ReadFile(file) //nolint:gosec // G304: user supplied input path
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return e.expander.ExpandSource(file, content)
}

// inputs returns the explicit paths as absolute input files, or the
// discovered files when paths is empty.
func (e *Engine) inputs(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return e.Discover()
	}
	files := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := absPath(p)
		if err != nil {
			return nil, err
		}
		if !e.IsInput(abs) {
			return nil, fmt.Errorf("%s is not an input file (want suffix %q)", p, e.inputSuffix)
		}
		files = append(files, abs)
	}
	return files, nil
}

func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", p, err)
	}
	return abs, nil
}

func writeIfChanged(path string, content []byte) error {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) { //nolint:gosec // G304: derived output path
		return nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil { //nolint:gosec // G306: generated source is world readable
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func toStateSites(sites []macro.Site) []state.Site {
	out := make([]state.Site, len(sites))
	for i, s := range sites {
		out[i] = state.Site{
			Line:        s.Line,
			Column:      s.Column,
			Source:      s.Source,
			Post:        s.Post.String(),
			Leaves:      s.Leaves,
			Operators:   s.Operators,
			HasFallback: s.HasFallback,
		}
	}
	return out
}
