// Package health runs post-deployment validation probes against the live
// two-site VPN deployment and aggregates them into a single report.
package health

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Probe outcome statuses.
type Status string

const (
	StatusPassed      Status = "PASSED"
	StatusFailed      Status = "FAILED"
	StatusSkipped     Status = "SKIPPED"
	StatusManualCheck Status = "MANUAL_CHECK_REQUIRED"
	StatusError       Status = "ERROR"
)

// Per-probe connect timeouts. UDP is shorter because the check is
// best-effort to begin with.
const (
	tcpTimeout = 10 * time.Second
	udpTimeout = 5 * time.Second
)

// TargetResult is one endpoint's outcome within a probe.
type TargetResult struct {
	Target  string `json:"target"`
	IP      string `json:"ip,omitempty"`
	Port    int    `json:"port,omitempty"`
	Ports   []int  `json:"ports,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Result is one probe's report entry.
type Result struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	Details     []TargetResult `json:"details,omitempty"`
	Commands    []string       `json:"commands,omitempty"`
	Expected    string         `json:"expected,omitempty"`
	Note        string         `json:"note,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Probe is one named, independent check.
type Probe struct {
	Name string
	Run  func(ctx context.Context, targets Targets) Result
}

// checkTCP dials ip:port and reports whether the port accepted the
// connection. Refused and timed-out connections both count as closed.
func checkTCP(ctx context.Context, ip string, port int) (bool, string) {
	d := net.Dialer{Timeout: tcpTimeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(ip, fmt.Sprintf("%d", port)))
	if err != nil {
		return false, fmt.Sprintf("port %d is closed: %v", port, err)
	}
	conn.Close()
	return true, fmt.Sprintf("port %d is open", port)
}

// checkUDP sends a best-effort datagram. UDP gives no positive confirmation
// remotely; absence of an immediate error is treated as open, and callers
// must carry that caveat into the report.
func checkUDP(ctx context.Context, ip string, port int) (bool, string) {
	d := net.Dialer{Timeout: udpTimeout}
	conn, err := d.DialContext(ctx, "udp", net.JoinHostPort(ip, fmt.Sprintf("%d", port)))
	if err != nil {
		return false, fmt.Sprintf("udp port %d: %v", port, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(udpTimeout))
	if _, err := conn.Write([]byte{0}); err != nil {
		return false, fmt.Sprintf("udp port %d send failed: %v", port, err)
	}
	return true, fmt.Sprintf("udp port %d reachable (no negative signal)", port)
}
