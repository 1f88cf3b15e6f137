package output

// SiteInfo is one recorded call site in JSON output.
type SiteInfo struct {
	File        string `json:"file"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	Source      string `json:"source"`
	Post        string `json:"post"`
	Leaves      int    `json:"leaves"`
	Operators   int    `json:"operators"`
	HasFallback bool   `json:"has_fallback"`
	RunID       string `json:"run_id"`
}

// RunInfo is one expansion run in JSON output.
type RunInfo struct {
	ID          string `json:"id"`
	Root        string `json:"root"`
	Status      string `json:"status"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	Files       int    `json:"files"`
	Expanded    int    `json:"expanded"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
	Sites       int    `json:"sites"`
	Error       string `json:"error,omitempty"`
}

// FileInfo is the outcome for one file in JSON output.
type FileInfo struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
	Status     string `json:"status"`
	Sites      int    `json:"sites"`
	Error      string `json:"error,omitempty"`
}

// ListOutput is the JSON document written by list.
type ListOutput struct {
	Sites   []SiteInfo  `json:"sites"`
	Runs    []RunInfo   `json:"runs,omitempty"`
	Summary ListSummary `json:"summary"`
}

// ListSummary aggregates the listed sites.
type ListSummary struct {
	Files  int            `json:"files"`
	Sites  int            `json:"sites"`
	ByPost map[string]int `json:"by_post"`
}

// ExpandOutput is the JSON document written by expand and check.
type ExpandOutput struct {
	RunID      string     `json:"run_id,omitempty"`
	Files      []FileInfo `json:"files"`
	Expanded   int        `json:"expanded"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	Stale      int        `json:"stale"`
	Sites      int        `json:"sites"`
	DurationMS int64      `json:"duration_ms"`
}

// RenderOutput is the JSON document written by render.
type RenderOutput struct {
	File   string     `json:"file"`
	Output string     `json:"output"`
	Sites  []SiteInfo `json:"sites"`
}

// ReplOutput is one expanded call in JSON output.
type ReplOutput struct {
	Input   string   `json:"input"`
	Code    string   `json:"code"`
	Imports []string `json:"imports"`
	Post    string   `json:"post"`
}
