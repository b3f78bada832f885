// Package state derives read-only deployment summaries from the persisted
// Terraform artifacts. The state and outputs objects are written only by
// the build job at the end of apply/destroy; nothing in this repository
// mutates them.
package state

import (
	"encoding/json"
	"fmt"
)

// Deployment status values reported by snapshots.
const (
	StatusDeployed    = "DEPLOYED"
	StatusNotDeployed = "NOT_DEPLOYED"
)

// Snapshot summarizes the currently provisioned resources.
type Snapshot struct {
	Status           string     `json:"status"`
	Message          string     `json:"message,omitempty"`
	TerraformVersion string     `json:"terraform_version,omitempty"`
	Serial           int        `json:"serial"`
	Lineage          string     `json:"lineage,omitempty"`
	ResourceCount    int        `json:"resource_count"`
	Resources        []Resource `json:"resources,omitempty"`
}

// Resource is one resource instance from the state, with the attributes
// that matter for chat-facing summaries pulled up to the top level.
type Resource struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Module    string `json:"module"`
	Provider  string `json:"provider,omitempty"`
	Mode      string `json:"mode"`
	ID        string `json:"id,omitempty"`
	ARN       string `json:"arn,omitempty"`
	PublicIP  string `json:"public_ip,omitempty"`
	PrivateIP string `json:"private_ip,omitempty"`
}

// raw mirrors the subset of the tfstate wire format we read.
type rawState struct {
	TerraformVersion string `json:"terraform_version"`
	Serial           int    `json:"serial"`
	Lineage          string `json:"lineage"`
	Resources        []struct {
		Module    string `json:"module"`
		Mode      string `json:"mode"`
		Type      string `json:"type"`
		Name      string `json:"name"`
		Provider  string `json:"provider"`
		Instances []struct {
			Attributes map[string]any `json:"attributes"`
		} `json:"instances"`
	} `json:"resources"`
}

// ParseSnapshot decodes a persisted tfstate document into a Snapshot.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var raw rawState
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	snap := &Snapshot{
		Status:           StatusDeployed,
		TerraformVersion: raw.TerraformVersion,
		Serial:           raw.Serial,
		Lineage:          raw.Lineage,
	}

	for _, res := range raw.Resources {
		module := res.Module
		if module == "" {
			module = "root"
		}
		mode := res.Mode
		if mode == "" {
			mode = "managed"
		}
		for _, inst := range res.Instances {
			r := Resource{
				Type:     res.Type,
				Name:     res.Name,
				Module:   module,
				Provider: res.Provider,
				Mode:     mode,
			}
			r.ID = stringAttr(inst.Attributes, "id")
			r.ARN = stringAttr(inst.Attributes, "arn")
			r.PublicIP = stringAttr(inst.Attributes, "public_ip")
			r.PrivateIP = stringAttr(inst.Attributes, "private_ip")
			snap.Resources = append(snap.Resources, r)
		}
	}
	snap.ResourceCount = len(snap.Resources)
	return snap, nil
}

// NotDeployed returns the snapshot used when no state artifact exists yet.
// This is a normal first-run condition, not an error.
func NotDeployed() *Snapshot {
	return &Snapshot{
		Status:  StatusNotDeployed,
		Message: "no Terraform state found; infrastructure may not be deployed yet",
	}
}

func stringAttr(attrs map[string]any, key string) string {
	if s, ok := attrs[key].(string); ok {
		return s
	}
	return ""
}
