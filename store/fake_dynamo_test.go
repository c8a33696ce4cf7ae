package store

import (
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

type item = map[string]*dynamodb.AttributeValue

// fakeDynamo understands just the calls DynamoStore makes.
type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI

	mu    sync.Mutex
	items map[string]map[int]item

	// putErr fails every batch that writes items; deletes still go through
	putErr error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[int]item)}
}

func keyOf(it item) (string, int) {
	sk, _ := strconv.Atoi(aws.StringValue(it["sk"].N))
	return aws.StringValue(it["pk"].S), sk
}

func (f *fakeDynamo) put(it item) {
	pk, sk := keyOf(it)
	if f.items[pk] == nil {
		f.items[pk] = make(map[int]item)
	}
	f.items[pk][sk] = it
}

func (f *fakeDynamo) GetItemWithContext(ctx aws.Context, in *dynamodb.GetItemInput, opts ...request.Option) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk, sk := keyOf(in.Key)
	return &dynamodb.GetItemOutput{Item: f.items[pk][sk]}, nil
}

func (f *fakeDynamo) PutItemWithContext(ctx aws.Context, in *dynamodb.PutItemInput, opts ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk, sk := keyOf(in.Item)
	if _, ok := f.items[pk][sk]; ok && in.ConditionExpression != nil {
		return nil, awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "exists", nil)
	}
	f.put(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) BatchWriteItemWithContext(ctx aws.Context, in *dynamodb.BatchWriteItemInput, opts ...request.Option) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		for _, reqs := range in.RequestItems {
			for _, r := range reqs {
				if r.PutRequest != nil {
					return nil, f.putErr
				}
			}
		}
	}
	for _, reqs := range in.RequestItems {
		for _, r := range reqs {
			switch {
			case r.PutRequest != nil:
				f.put(r.PutRequest.Item)
			case r.DeleteRequest != nil:
				pk, sk := keyOf(r.DeleteRequest.Key)
				delete(f.items[pk], sk)
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (f *fakeDynamo) QueryPagesWithContext(ctx aws.Context, in *dynamodb.QueryInput, fn func(*dynamodb.QueryOutput, bool) bool, opts ...request.Option) error {
	f.mu.Lock()
	pk := aws.StringValue(in.ExpressionAttributeValues[":pk"].S)
	var sks []int
	for sk := range f.items[pk] {
		if sk >= 0 {
			sks = append(sks, sk)
		}
	}
	sort.Ints(sks)
	var out []item
	for _, sk := range sks {
		out = append(out, f.items[pk][sk])
	}
	f.mu.Unlock()

	fn(&dynamodb.QueryOutput{Items: out}, true)
	return nil
}

func (f *fakeDynamo) ScanPagesWithContext(ctx aws.Context, in *dynamodb.ScanInput, fn func(*dynamodb.ScanOutput, bool) bool, opts ...request.Option) error {
	f.mu.Lock()
	var out []item
	for _, byKey := range f.items {
		if it, ok := byKey[metaIndex]; ok {
			out = append(out, it)
		}
	}
	f.mu.Unlock()

	fn(&dynamodb.ScanOutput{Items: out}, true)
	return nil
}
