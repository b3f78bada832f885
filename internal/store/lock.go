package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// The Terraform S3 backend takes its state lock as a conditional put into a
// DynamoDB table keyed by LockID. This probe reads that item so lock
// contention can be reported to callers as a retryable condition instead of
// an opaque build failure.

type dynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// LockInfo describes a held state lock.
type LockInfo struct {
	LockID  string `json:"lock_id"`
	Info    string `json:"info,omitempty"`
	Created string `json:"created,omitempty"`
}

// LockProbe inspects the Terraform state lock table.
type LockProbe struct {
	api    dynamoAPI
	table  string
	lockID string
}

// NewLockProbe returns a probe for the given lock table. lockID is the
// bucket/key pair Terraform uses as its LockID, e.g.
// "my-state-bucket/terraform/terraform.tfstate".
func NewLockProbe(cfg aws.Config, table, lockID string) *LockProbe {
	return &LockProbe{api: dynamodb.NewFromConfig(cfg), table: table, lockID: lockID}
}

// NewLockProbeWithAPI returns a probe backed by the given API, for tests.
func NewLockProbeWithAPI(api dynamoAPI, table, lockID string) *LockProbe {
	return &LockProbe{api: api, table: table, lockID: lockID}
}

// Check returns the currently held lock, or nil when the state is unlocked.
func (p *LockProbe) Check(ctx context.Context) (*LockInfo, error) {
	if p.table == "" {
		return nil, nil
	}
	out, err := p.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(p.table),
		Key: map[string]dbtypes.AttributeValue{
			"LockID": &dbtypes.AttributeValueMemberS{Value: p.lockID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read lock table %s: %w", p.table, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	info := &LockInfo{LockID: p.lockID}
	if v, ok := out.Item["Info"].(*dbtypes.AttributeValueMemberS); ok {
		info.Info = v.Value
	}
	if v, ok := out.Item["Created"].(*dbtypes.AttributeValueMemberS); ok {
		info.Created = v.Value
	}
	return info, nil
}

// IsLockConflict reports whether err looks like a state-lock acquisition
// failure from the execution backend. These are retryable: the lock is
// released when the competing operation finishes.
func IsLockConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{
		"ConditionalCheckFailed",
		"state lock",
		"Error acquiring the state lock",
		"state is locked",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
