/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jonboulle/clockwork"

	"github.com/suparena/redismodel/backend"
)

// Sort keys of the single-table layout. Hash fields are stored as
// fieldPrefix+field so they never collide with the reserved sort keys.
const (
	valueSK     = "#value"
	hashTTLSK   = "#ttl"
	fieldPrefix = "F#"
)

// API is the subset of the DynamoDB client used by Backend
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	Scan(ctx context.Context, params *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
}

var _ API = (*sdk.Client)(nil)

// record is one row of the table.
//
// ExpiresAtMs drives read-side expiry. TTL carries the same instant in
// epoch seconds for the table's native TTL sweeper.
type record struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	Value       []byte `dynamodbav:"Value,omitempty"`
	ExpiresAtMs int64  `dynamodbav:"ExpiresAtMs,omitempty"`
	TTL         int64  `dynamodbav:"TTL,omitempty"`
}

func (r *record) expired(now time.Time) bool {
	return r.ExpiresAtMs > 0 && now.UnixMilli() >= r.ExpiresAtMs
}

func (r *record) setExpiry(now time.Time, ttl time.Duration) {
	if ttl <= 0 {
		r.ExpiresAtMs, r.TTL = 0, 0
		return
	}
	at := now.Add(ttl)
	r.ExpiresAtMs = at.UnixMilli()
	r.TTL = at.Add(time.Second - 1).Unix()
}

// Backend implements backend.Backend on a single DynamoDB table keyed by
// the string attributes PK and SK.
type Backend struct {
	client    API
	tableName string
	clock     clockwork.Clock
}

var _ backend.Backend = (*Backend)(nil)

// Option configures a Backend
type Option func(*Backend)

// WithClock sets the clock used for expiry checks
func WithClock(clock clockwork.Clock) Option {
	return func(b *Backend) {
		b.clock = clock
	}
}

// New creates a Backend on tableName
func New(client API, tableName string, opts ...Option) *Backend {
	b := &Backend{client: client, tableName: tableName, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ClientConfig holds the settings needed to build a DynamoDB client
type ClientConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local
	Endpoint string
}

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are
// used when AccessKey is set, otherwise the default credential chain applies.
func NewDynamoDBClient(ctx context.Context, cfg ClientConfig) (*sdk.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func (b *Backend) getRecord(ctx context.Context, pk, sk string) (*record, error) {
	out, err := b.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      &b.tableName,
		Key:            itemKey(pk, sk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var r record
	if err := attributevalue.UnmarshalMap(out.Item, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return &r, nil
}

func (b *Backend) putRecord(ctx context.Context, r *record) error {
	av, err := attributevalue.MarshalMap(r)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	if _, err := b.client.PutItem(ctx, &sdk.PutItemInput{TableName: &b.tableName, Item: av}); err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

func (b *Backend) deleteRecord(ctx context.Context, pk, sk string) error {
	if _, err := b.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &b.tableName,
		Key:       itemKey(pk, sk),
	}); err != nil {
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// queryKey returns every row stored under pk
func (b *Backend) queryKey(ctx context.Context, pk string) ([]record, error) {
	keyCond := "PK = :pkVal"
	input := &sdk.QueryInput{
		TableName:              &b.tableName,
		KeyConditionExpression: &keyCond,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pkVal": &types.AttributeValueMemberS{Value: pk},
		},
		ConsistentRead: aws.Bool(true),
	}

	var records []record
	for {
		out, err := b.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query error: %w", err)
		}
		page := make([]record, 0, len(out.Items))
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
		records = append(records, page...)

		if len(out.LastEvaluatedKey) == 0 {
			return records, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	r, err := b.getRecord(ctx, key, valueSK)
	if err != nil {
		return nil, false, err
	}
	if r == nil || r.expired(b.clock.Now()) {
		return nil, false, nil
	}
	return r.Value, true, nil
}

func (b *Backend) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, key := range keys {
		v, found, err := b.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if found {
			out[i] = v
		}
	}
	return out, nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r := &record{PK: key, SK: valueSK, Value: value}
	r.setExpiry(b.clock.Now(), ttl)
	return b.putRecord(ctx, r)
}

// Delete removes every row under each key, so it drops plain values and
// whole hashes alike.
func (b *Backend) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		records, err := b.queryKey(ctx, key)
		if err != nil {
			return err
		}
		for _, r := range records {
			if err := b.deleteRecord(ctx, r.PK, r.SK); err != nil {
				return err
			}
		}
	}
	return nil
}

// Expire sets the TTL of a plain value, or of a whole hash through its
// "#ttl" row. A non-positive ttl deletes the key.
func (b *Backend) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return b.Delete(ctx, key)
	}

	records, err := b.queryKey(ctx, key)
	if err != nil {
		return err
	}
	now := b.clock.Now()

	isHash := false
	for i := range records {
		r := &records[i]
		switch {
		case r.SK == valueSK:
			if r.expired(now) {
				return nil
			}
			r.setExpiry(now, ttl)
			return b.putRecord(ctx, r)
		case strings.HasPrefix(r.SK, fieldPrefix):
			isHash = true
		case r.SK == hashTTLSK && r.expired(now):
			return nil
		}
	}
	if !isHash {
		return nil
	}

	meta := &record{PK: key, SK: hashTTLSK}
	meta.setExpiry(now, ttl)
	return b.putRecord(ctx, meta)
}

// hashExpired reports whether the hash under key has outlived its TTL
func (b *Backend) hashExpired(ctx context.Context, key string) (bool, error) {
	meta, err := b.getRecord(ctx, key, hashTTLSK)
	if err != nil {
		return false, err
	}
	return meta != nil && meta.expired(b.clock.Now()), nil
}

func (b *Backend) HGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	expired, err := b.hashExpired(ctx, key)
	if err != nil || expired {
		return nil, false, err
	}

	r, err := b.getRecord(ctx, key, fieldPrefix+field)
	if err != nil || r == nil {
		return nil, false, err
	}
	return r.Value, true, nil
}

// HSet keeps the TTL of a live hash. Writing into an expired hash starts
// a new one without TTL.
func (b *Backend) HSet(ctx context.Context, key, field string, value []byte) error {
	expired, err := b.hashExpired(ctx, key)
	if err != nil {
		return err
	}
	if expired {
		if err := b.Delete(ctx, key); err != nil {
			return err
		}
	}
	return b.putRecord(ctx, &record{PK: key, SK: fieldPrefix + field, Value: value})
}

func (b *Backend) HDel(ctx context.Context, key string, fields ...string) error {
	for _, field := range fields {
		if err := b.deleteRecord(ctx, key, fieldPrefix+field); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	records, err := b.queryKey(ctx, key)
	if err != nil {
		return nil, err
	}

	now := b.clock.Now()
	out := make(map[string][]byte, len(records))
	for _, r := range records {
		if r.SK == hashTTLSK && r.expired(now) {
			return map[string][]byte{}, nil
		}
		if field, ok := strings.CutPrefix(r.SK, fieldPrefix); ok {
			out[field] = r.Value
		}
	}
	return out, nil
}

// Scan walks the table page by page. The begins_with filter narrows the
// read to the pattern's literal prefix; the full glob is applied here.
func (b *Backend) Scan(ctx context.Context, match string, count int64, fn func(keys []string) error) error {
	prefix, _ := backend.LiteralPrefix(match)

	input := &sdk.ScanInput{
		TableName:            &b.tableName,
		ProjectionExpression: aws.String("PK, SK, ExpiresAtMs"),
	}
	if prefix != "" {
		input.FilterExpression = aws.String("begins_with(PK, :prefix)")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: prefix},
		}
	}
	if count > 0 {
		input.Limit = aws.Int32(int32(count))
	}

	seen := make(map[string]struct{})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		out, err := b.client.Scan(ctx, input)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		var records []record
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
			return fmt.Errorf("failed to unmarshal items: %w", err)
		}

		now := b.clock.Now()
		var keys []string
		for _, r := range records {
			if r.SK == hashTTLSK || r.expired(now) {
				continue
			}
			if _, dup := seen[r.PK]; dup || !backend.MatchPattern(match, r.PK) {
				continue
			}
			seen[r.PK] = struct{}{}
			keys = append(keys, r.PK)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

