package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"casatorpe/internal/domain"
)

const (
	pkPrefixLead = "LEAD#"
	skInquiry    = "INQUIRY"
	ttlDuration  = 180 * 24 * time.Hour // 180-day TTL
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client wraps a DynamoDB table holding relayed booking inquiries.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// leadPK returns the DynamoDB partition key for a lead.
func leadPK(leadID string) string {
	return pkPrefixLead + leadID
}

// ttlValue returns a Unix timestamp 180 days after ts.
func ttlValue(ts time.Time) int64 {
	return ts.Add(ttlDuration).Unix()
}

// NewLead constructs a Lead with a fresh id, creation time and TTL.
func NewLead(in domain.Inquiry) domain.Lead {
	id := newUUID()
	ts := now().UTC()
	return domain.Lead{
		PK:        leadPK(id),
		SK:        skInquiry,
		LeadID:    id,
		Inquiry:   in,
		CreatedAt: ts.Format(time.RFC3339),
		TTL:       ttlValue(ts),
	}
}

// RecordLead stores a relayed inquiry and returns its id. Honeypot content
// is never stored.
func (c *Client) RecordLead(ctx context.Context, in domain.Inquiry) (string, error) {
	lead := NewLead(in)
	if err := c.PutLead(ctx, lead); err != nil {
		return "", fmt.Errorf("repository: RecordLead: %w", err)
	}
	return lead.LeadID, nil
}

// PutLead writes a lead record. Existing records are never overwritten.
func (c *Client) PutLead(ctx context.Context, lead domain.Lead) error {
	if lead.PK == "" || lead.SK == "" {
		return errors.New("repository: PutLead: PK and SK are required")
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                leadItem(lead),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: PutLead: %w", err)
	}
	return nil
}

func leadItem(lead domain.Lead) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: lead.PK},
		"SK":        &types.AttributeValueMemberS{Value: lead.SK},
		"leadId":    &types.AttributeValueMemberS{Value: lead.LeadID},
		"name":      &types.AttributeValueMemberS{Value: lead.Inquiry.Name},
		"email":     &types.AttributeValueMemberS{Value: lead.Inquiry.Email},
		"checkIn":   &types.AttributeValueMemberS{Value: lead.Inquiry.CheckIn},
		"checkOut":  &types.AttributeValueMemberS{Value: lead.Inquiry.CheckOut},
		"message":   &types.AttributeValueMemberS{Value: lead.Inquiry.Message},
		"createdAt": &types.AttributeValueMemberS{Value: lead.CreatedAt},
		"ttl":       &types.AttributeValueMemberN{Value: strconv.FormatInt(lead.TTL, 10)},
	}
}

var (
	newUUID = func() string { return uuid.NewString() }
	now     = time.Now
)
