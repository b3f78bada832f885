package store

import "strings"

// Object storage key layout. This is a stable contract between the writer
// (the build job) and the readers (status tracker, health check runner,
// code mutator). Changing any of these requires changing the buildspec too.
const (
	// StateKey is the persisted Terraform state artifact.
	StateKey = "terraform/terraform.tfstate"

	// OutputsKey is the outputs artifact written after a successful apply.
	OutputsKey = "terraform/outputs.json"

	// PlanKey is the machine-readable plan diff written by plan operations.
	PlanKey = "terraform/plan.json"

	// DefaultSourcePrefix is where the Terraform source tree lives.
	DefaultSourcePrefix = "terraform/"

	// DefaultBackupPrefix is where modification backups are copied,
	// keyed by timestamp.
	DefaultBackupPrefix = "backups/"
)

// sourceSuffixes are the file types treated as Terraform source. Only these
// are read, backed up, and modified.
var sourceSuffixes = []string{".tf", ".tpl", ".tfvars"}

// IsSourceFile reports whether key names a Terraform source file.
func IsSourceFile(key string) bool {
	for _, suffix := range sourceSuffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}
