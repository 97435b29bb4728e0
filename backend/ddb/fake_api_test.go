/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI is an in-memory table for tests. It evaluates key conditions
// but ignores filter expressions, which Backend re-applies itself.
type fakeAPI struct {
	mu       sync.Mutex
	items    map[string]map[string]map[string]types.AttributeValue
	pageSize int
	err      error
	scans    int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{items: make(map[string]map[string]map[string]types.AttributeValue)}
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeAPI) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	item := f.items[str(params.Key["PK"])][str(params.Key["SK"])]
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeAPI) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	pk, sk := str(params.Item["PK"]), str(params.Item["SK"])
	if f.items[pk] == nil {
		f.items[pk] = make(map[string]map[string]types.AttributeValue)
	}
	f.items[pk][sk] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	pk := str(params.Key["PK"])
	delete(f.items[pk], str(params.Key["SK"]))
	if len(f.items[pk]) == 0 {
		delete(f.items, pk)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeAPI) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	pk := str(params.ExpressionAttributeValues[":pkVal"])
	sks := make([]string, 0, len(f.items[pk]))
	for sk := range f.items[pk] {
		sks = append(sks, sk)
	}
	sort.Strings(sks)

	out := &dynamodb.QueryOutput{}
	for _, sk := range sks {
		out.Items = append(out.Items, f.items[pk][sk])
	}
	return out, nil
}

func (f *fakeAPI) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.scans++

	type rowKey struct{ pk, sk string }
	var rows []rowKey
	for pk, bySK := range f.items {
		for sk := range bySK {
			rows = append(rows, rowKey{pk, sk})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].pk != rows[j].pk {
			return rows[i].pk < rows[j].pk
		}
		return rows[i].sk < rows[j].sk
	})

	start := 0
	if params.ExclusiveStartKey != nil {
		last := rowKey{str(params.ExclusiveStartKey["PK"]), str(params.ExclusiveStartKey["SK"])}
		for start < len(rows) && (rows[start].pk < last.pk || (rows[start].pk == last.pk && rows[start].sk <= last.sk)) {
			start++
		}
	}

	limit := f.pageSize
	if params.Limit != nil && (limit == 0 || int(*params.Limit) < limit) {
		limit = int(*params.Limit)
	}
	end := len(rows)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	out := &dynamodb.ScanOutput{}
	for _, r := range rows[start:end] {
		out.Items = append(out.Items, f.items[r.pk][r.sk])
	}
	if end < len(rows) {
		out.LastEvaluatedKey = itemKey(rows[end-1].pk, rows[end-1].sk)
	}
	return out, nil
}
