// Package runner talks to the execution environment: an ephemeral CodeBuild
// job that installs the Terraform toolchain, syncs the source tree from S3,
// runs exactly one operation, and persists the result artifacts back to S3.
// All state lives in object storage; a runner invocation holds nothing.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codebuild"
	cbtypes "github.com/aws/aws-sdk-go-v2/service/codebuild/types"
)

// ErrBuildNotFound is returned by BuildStatus for unknown build ids.
var ErrBuildNotFound = errors.New("build not found")

// codeBuildAPI is the slice of the CodeBuild client the runner uses.
type codeBuildAPI interface {
	StartBuild(ctx context.Context, in *codebuild.StartBuildInput, opts ...func(*codebuild.Options)) (*codebuild.StartBuildOutput, error)
	BatchGetBuilds(ctx context.Context, in *codebuild.BatchGetBuildsInput, opts ...func(*codebuild.Options)) (*codebuild.BatchGetBuildsOutput, error)
	ListBuildsForProject(ctx context.Context, in *codebuild.ListBuildsForProjectInput, opts ...func(*codebuild.Options)) (*codebuild.ListBuildsForProjectOutput, error)
}

// Client launches and inspects execution environment jobs.
type Client struct {
	api     codeBuildAPI
	project string
	region  string
}

// New returns a Client for the given CodeBuild project.
func New(cfg aws.Config, project string) *Client {
	return &Client{api: codebuild.NewFromConfig(cfg), project: project, region: cfg.Region}
}

// NewWithAPI returns a Client backed by the given API, for tests.
func NewWithAPI(api codeBuildAPI, project, region string) *Client {
	return &Client{api: api, project: project, region: region}
}

// StartedBuild is the immediate result of launching a job.
type StartedBuild struct {
	ID         string
	ARN        string
	Status     string
	LogGroup   string
	ConsoleURL string
	StartedAt  time.Time
}

// Start launches one build with the given environment variable overrides
// and returns without waiting for completion.
func (c *Client) Start(ctx context.Context, env map[string]string) (*StartedBuild, error) {
	// Sorted for deterministic request shapes in tests and logs.
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)

	overrides := make([]cbtypes.EnvironmentVariable, 0, len(env))
	for _, name := range names {
		overrides = append(overrides, cbtypes.EnvironmentVariable{
			Name:  aws.String(name),
			Value: aws.String(env[name]),
			Type:  cbtypes.EnvironmentVariableTypePlaintext,
		})
	}

	out, err := c.api.StartBuild(ctx, &codebuild.StartBuildInput{
		ProjectName:                  aws.String(c.project),
		EnvironmentVariablesOverride: overrides,
	})
	if err != nil {
		var rnf *cbtypes.ResourceNotFoundException
		if errors.As(err, &rnf) {
			return nil, fmt.Errorf("codebuild project %q not found: %w", c.project, err)
		}
		return nil, fmt.Errorf("failed to start build in project %q: %w", c.project, err)
	}

	build := out.Build
	started := &StartedBuild{
		ID:     aws.ToString(build.Id),
		ARN:    aws.ToString(build.Arn),
		Status: string(build.BuildStatus),
	}
	if build.StartTime != nil {
		started.StartedAt = *build.StartTime
	}
	if build.Logs != nil && build.Logs.GroupName != nil {
		started.LogGroup = *build.Logs.GroupName
	} else {
		started.LogGroup = "/aws/codebuild/" + c.project
	}
	started.ConsoleURL = c.consoleURL(started.ARN, started.ID)
	return started, nil
}

// consoleURL builds the web console deep link for a build.
func (c *Client) consoleURL(arn, buildID string) string {
	parts := strings.Split(arn, ":")
	if len(parts) < 5 {
		return ""
	}
	account := parts[4]
	return fmt.Sprintf("https://%s.console.aws.amazon.com/codesuite/codebuild/%s/projects/%s/build/%s",
		c.region, account, c.project, strings.ReplaceAll(buildID, ":", "%3A"))
}

// BuildPhase is one phase of a build's lifecycle.
type BuildPhase struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Duration int64  `json:"duration_seconds"`
}

// BuildStatus is the full status of one build.
type BuildStatus struct {
	BuildID         string       `json:"build_id"`
	Status          string       `json:"status"`
	Phase           string       `json:"phase"`
	Operation       string       `json:"operation,omitempty"`
	StartTime       *time.Time   `json:"start_time,omitempty"`
	EndTime         *time.Time   `json:"end_time,omitempty"`
	DurationSeconds float64      `json:"duration_seconds,omitempty"`
	LogsURL         string       `json:"logs_url,omitempty"`
	LogGroup        string       `json:"log_group,omitempty"`
	LogStream       string       `json:"log_stream,omitempty"`
	Phases          []BuildPhase `json:"phases,omitempty"`
}

// BuildStatus queries the job registry for one build. Unknown ids return
// ErrBuildNotFound, not a crash.
func (c *Client) BuildStatus(ctx context.Context, buildID string) (*BuildStatus, error) {
	out, err := c.api.BatchGetBuilds(ctx, &codebuild.BatchGetBuildsInput{Ids: []string{buildID}})
	if err != nil {
		return nil, fmt.Errorf("failed to get build %q: %w", buildID, err)
	}
	if len(out.Builds) == 0 {
		return nil, fmt.Errorf("build %q: %w", buildID, ErrBuildNotFound)
	}
	return buildToStatus(out.Builds[0]), nil
}

// RecentBuilds lists the most recent builds for the project, newest first.
func (c *Client) RecentBuilds(ctx context.Context, limit int) ([]BuildStatus, error) {
	list, err := c.api.ListBuildsForProject(ctx, &codebuild.ListBuildsForProjectInput{
		ProjectName: aws.String(c.project),
		SortOrder:   cbtypes.SortOrderTypeDescending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list builds for project %q: %w", c.project, err)
	}
	ids := list.Ids
	if len(ids) == 0 {
		return nil, nil
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	out, err := c.api.BatchGetBuilds(ctx, &codebuild.BatchGetBuildsInput{Ids: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to get builds: %w", err)
	}
	statuses := make([]BuildStatus, 0, len(out.Builds))
	for _, b := range out.Builds {
		statuses = append(statuses, *buildToStatus(b))
	}
	return statuses, nil
}

func buildToStatus(b cbtypes.Build) *BuildStatus {
	s := &BuildStatus{
		BuildID:   aws.ToString(b.Id),
		Status:    string(b.BuildStatus),
		Phase:     aws.ToString(b.CurrentPhase),
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
	if b.StartTime != nil && b.EndTime != nil {
		s.DurationSeconds = b.EndTime.Sub(*b.StartTime).Seconds()
	}
	if b.Logs != nil {
		s.LogsURL = aws.ToString(b.Logs.DeepLink)
		s.LogGroup = aws.ToString(b.Logs.GroupName)
		s.LogStream = aws.ToString(b.Logs.StreamName)
	}
	if b.Environment != nil {
		for _, ev := range b.Environment.EnvironmentVariables {
			if aws.ToString(ev.Name) == "TF_OPERATION" {
				s.Operation = aws.ToString(ev.Value)
				break
			}
		}
	}
	for _, p := range b.Phases {
		s.Phases = append(s.Phases, BuildPhase{
			Name:     string(p.PhaseType),
			Status:   string(p.PhaseStatus),
			Duration: aws.ToInt64(p.DurationInSeconds),
		})
	}
	return s
}
