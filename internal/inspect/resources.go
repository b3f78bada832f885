// Package inspect reads the live deployment directly from AWS with
// read-only describe calls. It backs the deployed-resources view and the
// routing/security-group health probes.
package inspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

type ec2API interface {
	DescribeVpcs(ctx context.Context, in *ec2.DescribeVpcsInput, opts ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeSubnets(ctx context.Context, in *ec2.DescribeSubnetsInput, opts ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, opts ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeSecurityGroups(ctx context.Context, in *ec2.DescribeSecurityGroupsInput, opts ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeAddresses(ctx context.Context, in *ec2.DescribeAddressesInput, opts ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error)
	DescribeInternetGateways(ctx context.Context, in *ec2.DescribeInternetGatewaysInput, opts ...func(*ec2.Options)) (*ec2.DescribeInternetGatewaysOutput, error)
	DescribeRouteTables(ctx context.Context, in *ec2.DescribeRouteTablesInput, opts ...func(*ec2.Options)) (*ec2.DescribeRouteTablesOutput, error)
}

// Inventory lists deployed resources.
type Inventory struct {
	api ec2API
}

// New returns an Inventory backed by the real EC2 client.
func New(cfg aws.Config) *Inventory {
	return &Inventory{api: ec2.NewFromConfig(cfg)}
}

// NewWithAPI returns an Inventory backed by the given API, for tests.
func NewWithAPI(api ec2API) *Inventory {
	return &Inventory{api: api}
}

// Resource is one deployed resource in chat-friendly shape.
type Resource struct {
	Type    string            `json:"type"`
	ID      string            `json:"id"`
	Name    string            `json:"name,omitempty"`
	State   string            `json:"state,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Report groups the live inventory.
type Report struct {
	Status        string                `json:"status"`
	Message       string                `json:"message"`
	ResourceCount int                   `json:"resource_count"`
	Summary       map[string]int        `json:"summary"`
	ByType        map[string][]Resource `json:"resources_by_type"`
	Resources     []Resource            `json:"resources"`
}

// Deployed queries every resource type and optionally filters by type
// substring (e.g. "vpc", "instance").
func (i *Inventory) Deployed(ctx context.Context, filter string) (*Report, error) {
	var resources []Resource

	collect := []func(context.Context) ([]Resource, error){
		i.vpcs, i.instances, i.subnets, i.securityGroups, i.elasticIPs, i.internetGateways,
	}
	for _, fn := range collect {
		rs, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		resources = append(resources, rs...)
	}

	if filter != "" {
		var filtered []Resource
		for _, r := range resources {
			if strings.Contains(strings.ToLower(r.Type), strings.ToLower(filter)) {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}

	report := &Report{
		ResourceCount: len(resources),
		Summary:       map[string]int{},
		ByType:        map[string][]Resource{},
		Resources:     resources,
	}
	for _, r := range resources {
		report.Summary[r.Type]++
		report.ByType[r.Type] = append(report.ByType[r.Type], r)
	}
	if len(resources) == 0 {
		report.Status = "not_deployed"
		report.Message = "no infrastructure resources found"
	} else {
		report.Status = "deployed"
		report.Message = fmt.Sprintf("found %d deployed resources", len(resources))
	}
	return report, nil
}

func (i *Inventory) vpcs(ctx context.Context) ([]Resource, error) {
	out, err := i.api.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe VPCs: %w", err)
	}
	var rs []Resource
	for _, vpc := range out.Vpcs {
		if aws.ToBool(vpc.IsDefault) {
			continue
		}
		rs = append(rs, Resource{
			Type:  "vpc",
			ID:    aws.ToString(vpc.VpcId),
			Name:  nameTag(vpc.Tags),
			State: string(vpc.State),
			Details: map[string]string{
				"cidr": aws.ToString(vpc.CidrBlock),
			},
		})
	}
	return rs, nil
}

func (i *Inventory) subnets(ctx context.Context) ([]Resource, error) {
	out, err := i.api.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe subnets: %w", err)
	}
	var rs []Resource
	for _, subnet := range out.Subnets {
		rs = append(rs, Resource{
			Type:  "subnet",
			ID:    aws.ToString(subnet.SubnetId),
			Name:  nameTag(subnet.Tags),
			State: string(subnet.State),
			Details: map[string]string{
				"cidr":   aws.ToString(subnet.CidrBlock),
				"vpc_id": aws.ToString(subnet.VpcId),
				"az":     aws.ToString(subnet.AvailabilityZone),
			},
		})
	}
	return rs, nil
}

func (i *Inventory) instances(ctx context.Context) ([]Resource, error) {
	out, err := i.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("instance-state-name"),
			Values: []string{"pending", "running", "stopping", "stopped"},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe instances: %w", err)
	}
	var rs []Resource
	for _, reservation := range out.Reservations {
		for _, inst := range reservation.Instances {
			details := map[string]string{
				"instance_type": string(inst.InstanceType),
			}
			if inst.PublicIpAddress != nil {
				details["public_ip"] = *inst.PublicIpAddress
			}
			if inst.PrivateIpAddress != nil {
				details["private_ip"] = *inst.PrivateIpAddress
			}
			if inst.VpcId != nil {
				details["vpc_id"] = *inst.VpcId
			}
			state := ""
			if inst.State != nil {
				state = string(inst.State.Name)
			}
			rs = append(rs, Resource{
				Type:    "instance",
				ID:      aws.ToString(inst.InstanceId),
				Name:    nameTag(inst.Tags),
				State:   state,
				Details: details,
			})
		}
	}
	return rs, nil
}

func (i *Inventory) securityGroups(ctx context.Context) ([]Resource, error) {
	out, err := i.api.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe security groups: %w", err)
	}
	var rs []Resource
	for _, sg := range out.SecurityGroups {
		if aws.ToString(sg.GroupName) == "default" {
			continue
		}
		rs = append(rs, Resource{
			Type: "security_group",
			ID:   aws.ToString(sg.GroupId),
			Name: aws.ToString(sg.GroupName),
			Details: map[string]string{
				"vpc_id":        aws.ToString(sg.VpcId),
				"ingress_rules": fmt.Sprintf("%d", len(sg.IpPermissions)),
			},
		})
	}
	return rs, nil
}

func (i *Inventory) elasticIPs(ctx context.Context) ([]Resource, error) {
	out, err := i.api.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe addresses: %w", err)
	}
	var rs []Resource
	for _, addr := range out.Addresses {
		details := map[string]string{}
		if addr.InstanceId != nil {
			details["instance_id"] = *addr.InstanceId
		}
		rs = append(rs, Resource{
			Type:    "elastic_ip",
			ID:      aws.ToString(addr.AllocationId),
			Name:    nameTag(addr.Tags),
			State:   aws.ToString(addr.PublicIp),
			Details: details,
		})
	}
	return rs, nil
}

func (i *Inventory) internetGateways(ctx context.Context) ([]Resource, error) {
	out, err := i.api.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe internet gateways: %w", err)
	}
	var rs []Resource
	for _, igw := range out.InternetGateways {
		details := map[string]string{}
		if len(igw.Attachments) > 0 {
			details["vpc_id"] = aws.ToString(igw.Attachments[0].VpcId)
		}
		rs = append(rs, Resource{
			Type:    "internet_gateway",
			ID:      aws.ToString(igw.InternetGatewayId),
			Name:    nameTag(igw.Tags),
			Details: details,
		})
	}
	return rs, nil
}

// RouteTableCount implements the health routing probe.
func (i *Inventory) RouteTableCount(ctx context.Context) (int, error) {
	out, err := i.api.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{})
	if err != nil {
		return 0, fmt.Errorf("failed to describe route tables: %w", err)
	}
	return len(out.RouteTables), nil
}

// IngressAllows reports whether any non-default security group permits
// inbound traffic on the given protocol and port.
func (i *Inventory) IngressAllows(ctx context.Context, proto string, port int) (bool, error) {
	out, err := i.api.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{})
	if err != nil {
		return false, fmt.Errorf("failed to describe security groups: %w", err)
	}
	for _, sg := range out.SecurityGroups {
		if aws.ToString(sg.GroupName) == "default" {
			continue
		}
		for _, perm := range sg.IpPermissions {
			p := aws.ToString(perm.IpProtocol)
			if p == "-1" {
				return true, nil
			}
			if p != proto {
				continue
			}
			from := int(aws.ToInt32(perm.FromPort))
			to := int(aws.ToInt32(perm.ToPort))
			if from <= port && port <= to {
				return true, nil
			}
		}
	}
	return false, nil
}

func nameTag(tags []ec2types.Tag) string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == "Name" {
			return aws.ToString(tag.Value)
		}
	}
	return ""
}
