package health

import (
	"fmt"
	"strings"
	"time"
)

// Summary counts probe outcomes by status.
type Summary struct {
	Total       int `json:"total"`
	Passed      int `json:"passed"`
	Failed      int `json:"failed"`
	Skipped     int `json:"skipped"`
	ManualCheck int `json:"manual_check"`
	Errors      int `json:"errors"`
}

// Report aggregates one suite run.
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	Suite     Suite     `json:"test_suite"`
	Status    string    `json:"status"`
	Summary   Summary   `json:"summary"`
	Tests     []Result  `json:"tests"`
	Text      string    `json:"report"`
}

// newReport computes summary counts, the overall verdict, and the
// human-readable text rendering. The verdict ignores skipped, manual and
// error entries: PASSED iff nothing failed, PARTIAL when failures mix with
// passes, FAILED when nothing passed and something failed.
func newReport(suite Suite, results []Result) *Report {
	r := &Report{
		Timestamp: time.Now().UTC(),
		Suite:     suite,
		Tests:     results,
	}
	for _, res := range results {
		r.Summary.Total++
		switch res.Status {
		case StatusPassed:
			r.Summary.Passed++
		case StatusFailed:
			r.Summary.Failed++
		case StatusManualCheck:
			r.Summary.ManualCheck++
		case StatusError:
			r.Summary.Errors++
		default:
			r.Summary.Skipped++
		}
	}

	switch {
	case r.Summary.Failed == 0:
		r.Status = "PASSED"
	case r.Summary.Passed > 0:
		r.Status = "PARTIAL"
	default:
		r.Status = "FAILED"
	}

	r.Text = r.render()
	return r
}

func (r *Report) render() string {
	divider := strings.Repeat("=", 60)
	lines := []string{
		divider,
		"INFRASTRUCTURE TEST REPORT",
		fmt.Sprintf("Timestamp: %s", r.Timestamp.Format(time.RFC3339)),
		fmt.Sprintf("Test Suite: %s", r.Suite),
		divider,
		"",
		fmt.Sprintf("OVERALL STATUS: %s", r.Status),
		"",
		"SUMMARY:",
		fmt.Sprintf("  Total Tests: %d", r.Summary.Total),
		fmt.Sprintf("  Passed: %d", r.Summary.Passed),
		fmt.Sprintf("  Failed: %d", r.Summary.Failed),
		fmt.Sprintf("  Manual Check Required: %d", r.Summary.ManualCheck),
		fmt.Sprintf("  Skipped: %d", r.Summary.Skipped),
		fmt.Sprintf("  Errors: %d", r.Summary.Errors),
		"",
		"TEST RESULTS:",
		strings.Repeat("-", 60),
	}

	for _, test := range r.Tests {
		lines = append(lines, fmt.Sprintf("  [%s] %s: %s", glyph(test.Status), test.Name, test.Status))
		if test.Description != "" {
			lines = append(lines, "      "+test.Description)
		}
		if test.Note != "" {
			lines = append(lines, "      note: "+test.Note)
		}
		for _, cmd := range test.Commands {
			lines = append(lines, "      run: "+cmd)
		}
		if test.Expected != "" {
			lines = append(lines, "      expect: "+test.Expected)
		}
		if test.Error != "" {
			lines = append(lines, "      error: "+test.Error)
		}
	}

	lines = append(lines, "", divider)
	return strings.Join(lines, "\n")
}

func glyph(s Status) string {
	switch s {
	case StatusPassed:
		return "✓"
	case StatusFailed:
		return "✗"
	default:
		return "?"
	}
}
