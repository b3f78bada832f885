package health

import "github.com/terraops-io/terraops/internal/state"

// Canonical target labels.
const (
	TargetFortigate1 = "fortigate1_ip"
	TargetFortigate2 = "fortigate2_ip"
	TargetUbuntu1    = "ubuntu1_ip"
	TargetUbuntu2    = "ubuntu2_ip"
)

// Targets maps endpoint labels to IP addresses. An endpoint absent from
// both the caller-supplied set and the deployment outputs leaves its
// dependent probes SKIPPED, never FAILED.
type Targets map[string]string

// outputNames maps target labels to the deployment output that resolves
// them.
var outputNames = map[string]string{
	TargetFortigate1: "fortigate1_public_ip",
	TargetFortigate2: "fortigate2_public_ip",
	TargetUbuntu1:    "ubuntu1_private_ip",
	TargetUbuntu2:    "ubuntu2_private_ip",
}

// ResolveTargets fills any label missing from overrides with the value
// from the deployment outputs. Caller-supplied values always win.
func ResolveTargets(overrides Targets, outputs state.OutputSet) Targets {
	targets := make(Targets, len(outputNames))
	for label, value := range overrides {
		if value != "" {
			targets[label] = value
		}
	}
	if outputs == nil {
		return targets
	}
	for label, output := range outputNames {
		if targets[label] == "" {
			if v := outputs.StringValue(output); v != "" {
				targets[label] = v
			}
		}
	}
	return targets
}

// fortigates returns the firewall targets in fixed order.
func (t Targets) fortigates() []struct{ Name, IP string } {
	return []struct{ Name, IP string }{
		{"FortiGate-1", t[TargetFortigate1]},
		{"FortiGate-2", t[TargetFortigate2]},
	}
}
