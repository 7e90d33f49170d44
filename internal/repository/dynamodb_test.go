package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"twin-agent/internal/domain"
)

type fakeDynamo struct {
	getOut       *dynamodb.GetItemOutput
	getErr       error
	putErr       error
	scanOut      *dynamodb.ScanOutput
	scanErr      error
	lastGetInput *dynamodb.GetItemInput
	lastPutInput *dynamodb.PutItemInput
	lastScanIn   *dynamodb.ScanInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.lastScanIn = in
	return f.scanOut, f.scanErr
}

func historyItem(sessionID, record string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
		"SK":        &types.AttributeValueMemberS{Value: dynamoSKHistory},
		"sessionId": &types.AttributeValueMemberS{Value: sessionID},
		"history":   &types.AttributeValueMemberS{Value: record},
	}
}

func mustNewDynamoStore(t *testing.T, db *fakeDynamo) *DynamoStore {
	t.Helper()
	s, err := NewDynamoStore(db, "test-table")
	require.NoError(t, err)
	return s
}

func TestDynamoStore_Load_HappyPath(t *testing.T) {
	record := `[{"role":"user","content":"Hello?","timestamp":"2026-02-27T11:00:00Z"},` +
		`{"role":"assistant","content":"Hi.","timestamp":"2026-02-27T11:00:01Z"}]`
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: historyItem("abc", record)}}
	s := mustNewDynamoStore(t, db)

	history, err := s.Load(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, domain.RoleUser, history[0].Role)
	require.Equal(t, "Hello?", history[0].Content)
	require.Equal(t, "Hi.", history[1].Content)
	require.NotNil(t, db.lastGetInput)
	require.True(t, *db.lastGetInput.ConsistentRead)
}

func TestDynamoStore_Load_MissingItem(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	s := mustNewDynamoStore(t, db)

	history, err := s.Load(context.Background(), "abc")
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestDynamoStore_Load_GetItemError(t *testing.T) {
	db := &fakeDynamo{getErr: errors.New("ResourceNotFoundException")}
	s := mustNewDynamoStore(t, db)

	_, err := s.Load(context.Background(), "abc")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDynamoStore_Load_MalformedRecord(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: historyItem("abc", "not-json")}}
	s := mustNewDynamoStore(t, db)

	_, err := s.Load(context.Background(), "abc")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestDynamoStore_Load_UnknownRole(t *testing.T) {
	record := `[{"role":"robot","content":"x","timestamp":"2026-02-27T11:00:00Z"}]`
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: historyItem("abc", record)}}
	s := mustNewDynamoStore(t, db)

	_, err := s.Load(context.Background(), "abc")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestDynamoStore_Load_MissingHistoryAttribute(t *testing.T) {
	item := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: sessionPK("abc")},
		"SK": &types.AttributeValueMemberS{Value: dynamoSKHistory},
	}
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: item}}
	s := mustNewDynamoStore(t, db)

	_, err := s.Load(context.Background(), "abc")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestDynamoStore_Append_WritesSessionItem(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewDynamoStore(t, db)

	history := []domain.Message{
		{Role: domain.RoleUser, Content: "Who are you?", Timestamp: time.Date(2026, 2, 27, 11, 0, 0, 0, time.UTC)},
	}
	err := s.Append(context.Background(), "abc", history)
	require.NoError(t, err)
	require.NotNil(t, db.lastPutInput)
	require.Equal(t, "test-table", *db.lastPutInput.TableName)

	pk := db.lastPutInput.Item["PK"].(*types.AttributeValueMemberS).Value
	require.Equal(t, "SESSION#abc", pk)

	record := db.lastPutInput.Item["history"].(*types.AttributeValueMemberS).Value
	stored, err := decodeHistory([]byte(record))
	require.NoError(t, err)
	require.Equal(t, history, stored)
}

func TestDynamoStore_Append_PutItemError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("ProvisionedThroughputExceededException")}
	s := mustNewDynamoStore(t, db)

	err := s.Append(context.Background(), "abc", nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDynamoStore_Sessions_PaginatesScan(t *testing.T) {
	first := &dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			{"sessionId": &types.AttributeValueMemberS{Value: "a"}},
		},
		LastEvaluatedKey: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: sessionPK("a")},
		},
	}
	second := &dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			{"sessionId": &types.AttributeValueMemberS{Value: "b"}},
		},
	}
	calls := 0
	db := &scanSequenceDynamo{outs: []*dynamodb.ScanOutput{first, second}, calls: &calls}
	s, err := NewDynamoStore(db, "test-table")
	require.NoError(t, err)

	ids, err := s.Sessions(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)
	require.Equal(t, 2, calls)
}

type scanSequenceDynamo struct {
	fakeDynamo
	outs  []*dynamodb.ScanOutput
	calls *int
}

func (f *scanSequenceDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	out := f.outs[*f.calls]
	*f.calls++
	return out, nil
}

func TestDynamoStore_Sessions_ScanError(t *testing.T) {
	db := &fakeDynamo{scanErr: errors.New("boom")}
	s := mustNewDynamoStore(t, db)

	_, err := s.Sessions(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestNewDynamoStore_NilAPI(t *testing.T) {
	_, err := NewDynamoStore(nil, "test-table")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNewDynamoStore_EmptyTableName(t *testing.T) {
	_, err := NewDynamoStore(&fakeDynamo{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}
