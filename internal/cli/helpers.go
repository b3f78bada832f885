package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/terraops-io/terraops/internal/config"
	"github.com/terraops-io/terraops/internal/health"
	"github.com/terraops-io/terraops/internal/inspect"
	"github.com/terraops-io/terraops/internal/mutate"
	"github.com/terraops-io/terraops/internal/ops"
	"github.com/terraops-io/terraops/internal/runner"
	"github.com/terraops-io/terraops/internal/status"
	"github.com/terraops-io/terraops/internal/store"
)

// app wires every component once per command invocation.
type app struct {
	cfg        *config.Config
	dispatcher *ops.Dispatcher
	tracker    *status.Tracker
	mutator    *mutate.Mutator
	health     *health.Runner
	inventory  *inspect.Inventory
	source     *store.Bucket
	artifacts  *store.Bucket
	logs       *runner.LogTailer
}

func loadConfig() *config.Config {
	cfg := config.FromEnv()
	if flagRegion != "" {
		cfg.Region = flagRegion
	}
	if flagProject != "" {
		cfg.CodeBuildProject = flagProject
	}
	if flagSourceBucket != "" {
		cfg.SourceBucket = flagSourceBucket
	}
	if flagStateBucket != "" {
		cfg.StateBucket = flagStateBucket
	}
	if flagLockTable != "" {
		cfg.LockTable = flagLockTable
	}
	return cfg
}

// newApp builds the full component graph backed by real AWS clients.
func newApp(ctx context.Context) (*app, error) {
	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	builds := runner.New(awsCfg, cfg.CodeBuildProject)
	source := store.NewBucket(awsCfg, cfg.SourceBucket)
	artifacts := store.NewBucket(awsCfg, cfg.StateBucket)

	var lock *store.LockProbe
	if cfg.LockTable != "" {
		lock = store.NewLockProbe(awsCfg, cfg.LockTable, cfg.StateBucket+"/"+store.StateKey)
	}

	dispatcher := ops.NewDispatcher(builds, cfg)
	tracker := status.NewTracker(builds, artifacts, lock)
	inventory := inspect.New(awsCfg)

	return &app{
		cfg:        cfg,
		dispatcher: dispatcher,
		tracker:    tracker,
		mutator:    mutate.NewMutator(source, cfg.SourcePrefix, cfg.BackupPrefix, dispatcher),
		health:     health.NewRunner(tracker, inventory),
		inventory:  inventory,
		source:     source,
		artifacts:  artifacts,
		logs:       runner.NewLogTailer(awsCfg),
	}, nil
}

// dispatch runs one operation and prints the handle.
func dispatch(ctx context.Context, req ops.Request) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	handle, err := a.dispatcher.Dispatch(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(handle)
}

// parseVars turns repeated key=value flags into a variable map.
func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", pair)
		}
		vars[key] = value
	}
	return vars, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
