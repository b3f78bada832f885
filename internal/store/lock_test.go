package store

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	item map[string]dbtypes.AttributeValue
	in   *dynamodb.GetItemInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.in = in
	return &dynamodb.GetItemOutput{Item: f.item}, nil
}

func TestLockProbeCheck_Held(t *testing.T) {
	api := &fakeDynamo{item: map[string]dbtypes.AttributeValue{
		"LockID":  &dbtypes.AttributeValueMemberS{Value: "tf-state/terraform/terraform.tfstate"},
		"Info":    &dbtypes.AttributeValueMemberS{Value: `{"Operation":"OperationTypeApply"}`},
		"Created": &dbtypes.AttributeValueMemberS{Value: "2026-03-01T12:00:00Z"},
	}}
	p := NewLockProbeWithAPI(api, "terraform-locks", "tf-state/terraform/terraform.tfstate")

	info, err := p.Check(context.Background())
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "tf-state/terraform/terraform.tfstate", info.LockID)
	assert.Contains(t, info.Info, "OperationTypeApply")
	assert.True(t, aws.ToBool(api.in.ConsistentRead))
}

func TestLockProbeCheck_Unlocked(t *testing.T) {
	p := NewLockProbeWithAPI(&fakeDynamo{}, "terraform-locks", "tf-state/terraform/terraform.tfstate")

	info, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestLockProbeCheck_NoTableConfigured(t *testing.T) {
	p := NewLockProbeWithAPI(&fakeDynamo{}, "", "x")

	info, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.Nil(t, info)
}
