package runner

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
)

type logsAPI interface {
	GetLogEvents(ctx context.Context, in *cloudwatchlogs.GetLogEventsInput, opts ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error)
}

// LogTailer reads the tail of a build's CloudWatch log stream so status
// queries can include recent output without the caller opening the console.
type LogTailer struct {
	api logsAPI
}

// NewLogTailer returns a tailer backed by the real CloudWatch Logs client.
func NewLogTailer(cfg aws.Config) *LogTailer {
	return &LogTailer{api: cloudwatchlogs.NewFromConfig(cfg)}
}

// NewLogTailerWithAPI returns a tailer backed by the given API, for tests.
func NewLogTailerWithAPI(api logsAPI) *LogTailer {
	return &LogTailer{api: api}
}

// Tail returns up to limit of the most recent log lines for the stream.
func (t *LogTailer) Tail(ctx context.Context, group, stream string, limit int) ([]string, error) {
	if group == "" || stream == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	out, err := t.api.GetLogEvents(ctx, &cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(group),
		LogStreamName: aws.String(stream),
		Limit:         aws.Int32(int32(limit)),
		StartFromHead: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read log stream %s/%s: %w", group, stream, err)
	}
	lines := make([]string, 0, len(out.Events))
	for _, ev := range out.Events {
		lines = append(lines, aws.ToString(ev.Message))
	}
	return lines, nil
}
