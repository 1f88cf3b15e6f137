package engine

// discovery.go - locating input files and deciding which need expansion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// skippedDirs are never searched for input files.
var skippedDirs = map[string]bool{
	"vendor":       true,
	"testdata":     true,
	"node_modules": true,
}

// Discover returns the absolute paths of all input files under the root,
// sorted.
func (e *Engine) Discover() ([]string, error) {
	e.logger.Debug("discovering input files", "root", e.root, "suffix", e.inputSuffix)

	var files []string
	err := filepath.WalkDir(e.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != e.root && e.skipDir(p, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !e.IsInput(p) || e.excluded(p) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", e.root, err)
	}

	sort.Strings(files)

	e.logger.Debug("discovery completed", "files", len(files))
	return files, nil
}

func (e *Engine) skipDir(p, name string) bool {
	if skippedDirs[name] || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	return e.excluded(p)
}

// excluded reports whether p matches one of the exclude patterns, either by
// its path relative to the root or by its base name.
func (e *Engine) excluded(p string) bool {
	if len(e.exclude) == 0 {
		return false
	}
	rel := filepath.ToSlash(e.Rel(p))
	base := filepath.Base(p)
	for _, pattern := range e.exclude {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
		if strings.HasPrefix(rel, strings.TrimSuffix(pattern, "/")+"/") {
			return true
		}
	}
	return false
}

// shouldExpandFile checks if a file needs re-expansion based on its content
// hash and the presence of its output.
func (e *Engine) shouldExpandFile(filePath string, force bool) (needsExpand bool, newHash string, content []byte, err error) {
	content, err = os.ReadFile(filePath) //nolint:gosec // G304: filePath comes from discovery
	if err != nil {
		return false, "", nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	newHash = computeHash(content)

	if force {
		return true, newHash, content, nil
	}

	if _, statErr := os.Stat(e.OutputPath(filePath)); statErr != nil {
		return true, newHash, content, nil // Output missing, must expand
	}

	existingHash, hashErr := e.store.GetContentHash(filePath)
	if hashErr != nil || existingHash == "" {
		return true, newHash, content, nil // No existing record, must expand
	}

	return existingHash != newHash, newHash, content, nil
}

// computeHash returns a short hex digest of content.
func computeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:8]) // Use first 8 bytes for brevity
}
