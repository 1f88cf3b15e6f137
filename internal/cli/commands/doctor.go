package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/npmacro/internal/cli/config"
	"github.com/leapstack-labs/npmacro/internal/cli/output"
	"github.com/leapstack-labs/npmacro/internal/engine"
	"github.com/leapstack-labs/npmacro/internal/state"
)

// Health check statuses.
const (
	checkPass  = "pass"
	checkWarn  = "warn"
	checkError = "error"
)

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         ProjectSummary `json:"summary"`
	HealthChecks    []HealthCheck  `json:"health_checks"`
	Score           int            `json:"score"`
	Recommendations []string       `json:"recommendations"`
	IssueCount      int            `json:"issue_count"`
}

// ProjectSummary contains project-level statistics.
type ProjectSummary struct {
	ConfigFile    string `json:"config_file,omitempty"`
	Root          string `json:"root"`
	Inputs        int    `json:"inputs"`
	Sites         int    `json:"sites"`
	SchemaVersion int64  `json:"schema_version"`
	LastRun       string `json:"last_run,omitempty"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the project setup",
		Long: `Check the configuration, the input files and the state database, and
report anything that would make expansion fail or leave stale output.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  npmacro doctor

  # Output as JSON
  npmacro doctor --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}

	return cmd
}

func runDoctor(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	out := buildDoctorOutput(cmd, cmdCtx.Engine)

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}
	return nil
}

func buildDoctorOutput(cmd *cobra.Command, eng *engine.Engine) *DoctorOutput {
	out := &DoctorOutput{Summary: ProjectSummary{
		ConfigFile: config.GetConfigFileUsed(),
		Root:       eng.Root(),
	}}

	add := func(c HealthCheck) {
		switch {
		case c.Status != "":
		case c.IssueCount > 0:
			c.Status = checkWarn
		default:
			c.Status = checkPass
		}
		out.HealthChecks = append(out.HealthChecks, c)
		if c.Status != checkPass {
			out.IssueCount += max(c.IssueCount, 1)
		}
	}

	// Configuration
	configCheck := HealthCheck{ID: "CF01", Name: "Config file", Group: "configuration"}
	if out.Summary.ConfigFile == "" {
		configCheck.IssueCount = 1
		configCheck.Details = []string{"no npmacro.yaml found, using defaults"}
	}
	add(configCheck)

	// Sources
	inputs, discoverErr := eng.Discover()
	out.Summary.Inputs = len(inputs)
	inputCheck := HealthCheck{ID: "SR01", Name: "Input files", Group: "sources"}
	switch {
	case discoverErr != nil:
		inputCheck.Status, inputCheck.IssueCount = checkError, 1
		inputCheck.Details = []string{discoverErr.Error()}
	case len(inputs) == 0:
		inputCheck.IssueCount = 1
		inputCheck.Details = []string{"no input files under " + eng.Root()}
	}
	add(inputCheck)

	markerCheck := HealthCheck{ID: "SR02", Name: "Call sites expand", Group: "sources"}
	unusedCheck := HealthCheck{ID: "SR03", Name: "Marker imported", Group: "sources"}
	for _, f := range inputs {
		res, err := eng.Render(f)
		if err != nil {
			markerCheck.Status = checkError
			markerCheck.IssueCount++
			markerCheck.Details = append(markerCheck.Details, err.Error())
			continue
		}
		out.Summary.Sites += len(res.Sites)
		if !res.HasMarker {
			unusedCheck.IssueCount++
			unusedCheck.Details = append(unusedCheck.Details, eng.Rel(f)+" does not import the marker package")
		}
	}
	add(markerCheck)
	add(unusedCheck)

	staleCheck := HealthCheck{ID: "SR04", Name: "Generated files current", Group: "sources"}
	if result, err := eng.Check(cmd.Context(), nil); result != nil {
		for _, f := range result.Stale() {
			staleCheck.IssueCount++
			staleCheck.Details = append(staleCheck.Details, eng.Rel(f.OutputPath)+" is missing or out of date")
		}
	} else if err != nil {
		staleCheck.Status, staleCheck.IssueCount = checkError, 1
		staleCheck.Details = []string{err.Error()}
	}
	add(staleCheck)

	// State
	stateCheck := HealthCheck{ID: "ST01", Name: "State database", Group: "state"}
	store := eng.GetStateStore()
	if v, ok := store.(interface{ GetMigrationVersion() (int64, error) }); ok {
		version, err := v.GetMigrationVersion()
		if err != nil {
			stateCheck.Status, stateCheck.IssueCount = checkError, 1
			stateCheck.Details = []string{err.Error()}
		}
		out.Summary.SchemaVersion = version
	}
	add(stateCheck)

	runCheck := HealthCheck{ID: "ST02", Name: "Last run", Group: "state"}
	if run, err := store.GetLatestRun(); err != nil {
		runCheck.Status, runCheck.IssueCount = checkError, 1
		runCheck.Details = []string{err.Error()}
	} else if run != nil {
		out.Summary.LastRun = string(run.Status)
		if run.Status == state.RunStatusFailed {
			runCheck.IssueCount = 1
			runCheck.Details = []string{firstLine(run.Error)}
		}
	}
	add(runCheck)

	out.Score = healthScore(out.HealthChecks)
	out.Recommendations = recommendations(out.HealthChecks)
	return out
}

// healthScore computes a score from 0-100.
func healthScore(checks []HealthCheck) int {
	score := 100
	for _, c := range checks {
		switch c.Status {
		case checkError:
			score -= 20 * max(c.IssueCount, 1)
		case checkWarn:
			score -= 5 * max(c.IssueCount, 1)
		}
	}
	return max(score, 0)
}

func recommendations(checks []HealthCheck) []string {
	var recs []string
	for _, c := range checks {
		if c.Status == checkPass {
			continue
		}
		switch c.ID {
		case "CF01":
			recs = append(recs, "Run npmacro init to pin the configuration")
		case "SR01":
			recs = append(recs, "Name input files with the input suffix or adjust root and exclude")
		case "SR02":
			recs = append(recs, "Fix the reported call sites; expansion stops at the first error in a file")
		case "SR03":
			recs = append(recs, "Rename input files that no longer use npm.Calc")
		case "SR04":
			recs = append(recs, "Run npmacro expand")
		case "ST01":
			recs = append(recs, "Delete the state database; it is rebuilt on the next expand")
		case "ST02":
			recs = append(recs, "Inspect the last run with npmacro list --runs")
		}
	}
	return recs
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func statusIcon(r *output.Renderer, status string) string {
	switch status {
	case checkWarn:
		return r.Styles().Warning.Render("!")
	case checkError:
		return r.Styles().Error.Render("✗")
	default:
		return r.Styles().Success.Render("✓")
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render("npmacro Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	r.Println(styles.Header2.Render("Project Summary"))
	r.Printf("   Root: %s\n", out.Summary.Root)
	r.Printf("   Inputs: %d | Sites: %d | Schema: v%d\n", out.Summary.Inputs, out.Summary.Sites, out.Summary.SchemaVersion)
	r.Println("")

	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		status := fmt.Sprintf("%s %s: %s", statusIcon(r, check.Status), check.ID, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		// Show first 3 details for issues
		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println("# npmacro Health Report")
	r.Println("")

	r.Println("## Project Summary")
	r.Println("")
	if out.Summary.ConfigFile != "" {
		r.Println(output.FormatKeyValue("Config", out.Summary.ConfigFile))
	}
	r.Println(output.FormatKeyValue("Root", out.Summary.Root))
	r.Println(output.FormatKeyValue("Inputs", fmt.Sprint(out.Summary.Inputs)))
	r.Println(output.FormatKeyValue("Sites", fmt.Sprint(out.Summary.Sites)))
	r.Println(output.FormatKeyValue("Schema version", fmt.Sprint(out.Summary.SchemaVersion)))
	r.Println("")

	r.Println("## Health Checks")
	r.Println("")
	rows := make([][]string, 0, len(out.HealthChecks))
	for _, c := range out.HealthChecks {
		rows = append(rows, []string{c.ID, c.Name, c.Group, c.Status, fmt.Sprint(c.IssueCount)})
	}
	r.Table([]string{"ID", "Check", "Group", "Status", "Issues"}, rows)
	r.Println("")

	for _, c := range out.HealthChecks {
		if len(c.Details) == 0 {
			continue
		}
		r.Println(output.FormatHeader(3, c.ID+" "+c.Name))
		for _, d := range c.Details {
			r.Println("- " + d)
		}
		r.Println("")
	}

	r.Printf("**Health Score**: %d/100\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
	}
}
