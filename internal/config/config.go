package config

import (
	"fmt"
	"os"
)

// Config holds the runtime configuration for terraops. Every value can be
// supplied through the environment; CLI flags override individual fields.
type Config struct {
	// Region is the AWS region all clients are created in.
	Region string

	// CodeBuildProject is the name of the CodeBuild project that executes
	// Terraform operations.
	CodeBuildProject string

	// SourceBucket holds the Terraform source tree (*.tf, *.tpl, *.tfvars).
	SourceBucket string

	// StateBucket holds the persisted state and outputs artifacts.
	StateBucket string

	// LockTable is the DynamoDB table used by the Terraform S3 backend for
	// state locking. Optional; lock inspection is skipped when empty.
	LockTable string

	// TerraformVersion is the toolchain version installed by the build job.
	TerraformVersion string

	// SourcePrefix is the key prefix of the source tree in SourceBucket.
	SourcePrefix string

	// BackupPrefix is the key prefix modification backups are copied under.
	BackupPrefix string

	// LogLevel controls the structured logger (debug, info, warn, error).
	LogLevel string
}

// FromEnv builds a Config from the process environment.
func FromEnv() *Config {
	return &Config{
		Region:           envOr("AWS_REGION", "us-east-2"),
		CodeBuildProject: envOr("CODEBUILD_PROJECT", "terraform-executor"),
		SourceBucket:     os.Getenv("TERRAFORM_BUCKET"),
		StateBucket:      os.Getenv("STATE_BUCKET"),
		LockTable:        os.Getenv("LOCK_TABLE"),
		TerraformVersion: envOr("TERRAFORM_VERSION", "1.6.0"),
		SourcePrefix:     envOr("TERRAFORM_PREFIX", "terraform/"),
		BackupPrefix:     envOr("BACKUP_PREFIX", "backups/"),
		LogLevel:         envOr("LOG_LEVEL", "info"),
	}
}

// Validate checks that the fields required by bucket-backed operations are
// present. Commands that never touch S3 may skip this.
func (c *Config) Validate() error {
	if c.SourceBucket == "" {
		return fmt.Errorf("TERRAFORM_BUCKET is not set")
	}
	if c.StateBucket == "" {
		return fmt.Errorf("STATE_BUCKET is not set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
