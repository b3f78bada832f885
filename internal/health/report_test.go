package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func results(statuses ...Status) []Result {
	out := make([]Result, len(statuses))
	for i, s := range statuses {
		out[i] = Result{Name: "probe", Status: s}
	}
	return out
}

func TestReportVerdict(t *testing.T) {
	cases := []struct {
		name     string
		statuses []Status
		want     string
	}{
		{"all passed", []Status{StatusPassed, StatusPassed}, "PASSED"},
		{"nothing ran", nil, "PASSED"},
		{"only skips and manual", []Status{StatusSkipped, StatusManualCheck}, "PASSED"},
		{"manual checks do not block a pass", []Status{StatusPassed, StatusManualCheck, StatusManualCheck}, "PASSED"},
		{"errors do not block a pass", []Status{StatusPassed, StatusError}, "PASSED"},
		{"mixed pass and fail", []Status{StatusPassed, StatusFailed}, "PARTIAL"},
		{"fail with skips only", []Status{StatusFailed, StatusSkipped}, "FAILED"},
		{"all failed", []Status{StatusFailed, StatusFailed}, "FAILED"},
		{"fail plus error", []Status{StatusFailed, StatusError}, "FAILED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newReport(SuiteQuick, results(tc.statuses...))
			assert.Equal(t, tc.want, r.Status)
		})
	}
}

func TestReportSummaryCounts(t *testing.T) {
	r := newReport(SuiteFull, results(
		StatusPassed, StatusPassed, StatusFailed, StatusSkipped,
		StatusManualCheck, StatusError,
	))
	assert.Equal(t, 6, r.Summary.Total)
	assert.Equal(t, 2, r.Summary.Passed)
	assert.Equal(t, 1, r.Summary.Failed)
	assert.Equal(t, 1, r.Summary.Skipped)
	assert.Equal(t, 1, r.Summary.ManualCheck)
	assert.Equal(t, 1, r.Summary.Errors)
	assert.Equal(t, "PARTIAL", r.Status)
}

func TestReportRender(t *testing.T) {
	r := newReport(SuiteVPN, []Result{
		{Name: "VPN Tunnel Status", Status: StatusManualCheck,
			Commands: []string{"ssh admin@1.2.3.4 'get vpn ipsec tunnel summary'"},
			Expected: "tunnel summary shows status: up"},
		{Name: "FortiGate HTTPS Access", Status: StatusPassed},
	})
	assert.Contains(t, r.Text, "INFRASTRUCTURE TEST REPORT")
	assert.Contains(t, r.Text, "Test Suite: vpn")
	assert.Contains(t, r.Text, "OVERALL STATUS: PASSED")
	assert.Contains(t, r.Text, "run: ssh admin@1.2.3.4")
	assert.Contains(t, r.Text, "expect: tunnel summary shows status: up")
}
