package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"twin-agent/internal/domain"
)

const (
	dynamoPKPrefix  = "SESSION#"
	dynamoSKHistory = "HISTORY#"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore keeps one item per session holding the serialized record, the
// same document the file and S3 variants store. PutItem replaces the whole
// item, so an append is atomic per session.
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
}

// NewDynamoStore creates a DynamoStore backed by the given table.
func NewDynamoStore(api dynamodbAPI, tableName string) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: dynamodb api must not be nil")
	}
	tableName = strings.TrimSpace(tableName)
	if tableName == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DynamoStore{api: api, tableName: tableName}, nil
}

// sessionPK returns the partition key for a session.
func sessionPK(sessionID string) string {
	return dynamoPKPrefix + sessionID
}

func sessionKey(sessionID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
		"SK": &types.AttributeValueMemberS{Value: dynamoSKHistory},
	}
}

func (s *DynamoStore) Load(ctx context.Context, sessionID string) ([]domain.Message, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            sessionKey(sessionID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: get session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	if out == nil || len(out.Item) == 0 {
		return []domain.Message{}, nil
	}

	record, err := strAttr(out.Item, "history")
	if err != nil {
		return nil, fmt.Errorf("repository: session %q: %w: %w", sessionID, ErrCorrupt, err)
	}
	history, err := decodeHistory([]byte(record))
	if err != nil {
		return nil, fmt.Errorf("repository: session %q: %w", sessionID, err)
	}
	return history, nil
}

func (s *DynamoStore) Append(ctx context.Context, sessionID string, history []domain.Message) error {
	data, err := encodeHistory(history)
	if err != nil {
		return fmt.Errorf("repository: session %q: %w", sessionID, err)
	}

	item := sessionKey(sessionID)
	item["sessionId"] = &types.AttributeValueMemberS{Value: sessionID}
	item["history"] = &types.AttributeValueMemberS{Value: string(data)}
	item["updatedAt"] = &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("repository: put session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	return nil
}

func (s *DynamoStore) Sessions(ctx context.Context) ([]string, error) {
	var (
		ids     []string
		startAt map[string]types.AttributeValue
	)
	for {
		out, err := s.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(s.tableName),
			ProjectionExpression: aws.String("sessionId"),
			ExclusiveStartKey:    startAt,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: scan sessions: %w: %w", ErrUnavailable, err)
		}
		for _, item := range out.Items {
			id, err := strAttr(item, "sessionId")
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startAt = out.LastEvaluatedKey
	}
	return ids, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
