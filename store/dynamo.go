package store

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/google/uuid"
	"github.com/jsphweid/tieline/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// metaIndex is the sort key of the item describing the line itself.
// Notes use their position, starting at 0.
const metaIndex = -1

// DynamoDB caps batch writes at 25 items
const batchSize = 25

const rollbackTimeout = 10 * time.Second

type dynamoItem struct {
	PK string `dynamodbav:"pk"`
	SK int    `dynamodbav:"sk"`

	// line metadata
	ID       string    `dynamodbav:"id"`
	Composer string    `dynamodbav:"composer,omitempty"`
	Created  time.Time `dynamodbav:"created"`
	NumNotes int       `dynamodbav:"num_notes,omitempty"`

	Record *model.Record `dynamodbav:"record,omitempty"`
}

// DynamoStore keeps each line as one metadata item plus one item per note,
// all under the line name as partition key.
type DynamoStore struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func NewDynamoStore(endpoint, region, table string) (*DynamoStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(region),
		Endpoint: aws.String(endpoint),
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return NewDynamoStoreWithClient(dynamodb.New(sess), table), nil
}

func NewDynamoStoreWithClient(client dynamodbiface.DynamoDBAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func key(line string, sk int) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"pk": {S: aws.String(line)},
		"sk": {N: aws.String(strconv.Itoa(sk))},
	}
}

func (s *DynamoStore) getItem(ctx context.Context, line string, sk int) (*dynamoItem, error) {
	out, err := s.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            key(line, sk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "error from DynamoDB")
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var item dynamoItem
	if err := dynamodbattribute.UnmarshalMap(out.Item, &item); err != nil {
		return nil, errors.Wrap(err, "decoding item")
	}
	return &item, nil
}

func lineOf(item *dynamoItem) model.Line {
	return model.Line{
		ID:       item.ID,
		Name:     item.PK,
		Header:   model.Header{Composer: item.Composer, Created: item.Created},
		NumNotes: item.NumNotes,
	}
}

func storedNoteOf(line model.Line, item *dynamoItem) (model.StoredNote, error) {
	if item.Record == nil {
		return model.StoredNote{}, errors.Wrapf(model.ErrInvalidNote, "item %s/%d has no record", item.PK, item.SK)
	}
	n, err := item.Record.SymbolicNote()
	if err != nil {
		return model.StoredNote{}, errors.WithMessagef(err, "item %s/%d", item.PK, item.SK)
	}
	return model.StoredNote{ID: item.ID, LineID: line.ID, Line: line.Name, Index: item.SK, Note: n}, nil
}

func (s *DynamoStore) AddLine(ctx context.Context, name string, header model.Header, notes []model.SymbolicNote) (model.Line, error) {
	if err := CheckLine(notes); err != nil {
		return model.Line{}, errors.WithMessagef(err, "line %s", name)
	}
	if header.Created.IsZero() {
		header.Created = time.Now().UTC()
	}
	l := model.Line{ID: uuid.New().String(), Name: name, Header: header, NumNotes: len(notes)}

	meta, err := dynamodbattribute.MarshalMap(dynamoItem{
		PK: name, SK: metaIndex, ID: l.ID,
		Composer: header.Composer, Created: header.Created, NumNotes: len(notes),
	})
	if err != nil {
		return model.Line{}, errors.Wrap(err, "encoding line")
	}
	_, err = s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                meta,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
			return model.Line{}, errors.Wrap(model.ErrLineExists, name)
		}
		return model.Line{}, errors.Wrap(err, "error from DynamoDB")
	}

	var requests []*dynamodb.WriteRequest
	for i, n := range notes {
		r := model.RecordOf(n)
		item, err := dynamodbattribute.MarshalMap(dynamoItem{PK: name, SK: i, ID: uuid.New().String(), Record: &r})
		if err != nil {
			return model.Line{}, errors.Wrap(err, "encoding note")
		}
		requests = append(requests, &dynamodb.WriteRequest{PutRequest: &dynamodb.PutRequest{Item: item}})
	}
	if err := s.batchWrite(ctx, requests); err != nil {
		s.rollback(name, len(notes))
		return model.Line{}, err
	}

	logrus.WithFields(logrus.Fields{"line": name, "notes": len(notes)}).Debug("stored line in DynamoDB")
	return l, nil
}

// rollback removes the metadata item and any notes of a line whose write
// failed part way, so the name is free again. It runs detached from the
// request context, which may be the reason the write failed.
func (s *DynamoStore) rollback(name string, numNotes int) {
	requests := []*dynamodb.WriteRequest{{DeleteRequest: &dynamodb.DeleteRequest{Key: key(name, metaIndex)}}}
	for i := 0; i < numNotes; i++ {
		requests = append(requests, &dynamodb.WriteRequest{DeleteRequest: &dynamodb.DeleteRequest{Key: key(name, i)}})
	}
	ctx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
	defer cancel()
	if err := s.batchWrite(ctx, requests); err != nil {
		logrus.WithError(err).WithField("line", name).Error("could not roll back partially written line")
	}
}

func (s *DynamoStore) batchWrite(ctx context.Context, requests []*dynamodb.WriteRequest) error {
	for len(requests) > 0 {
		n := batchSize
		if len(requests) < n {
			n = len(requests)
		}
		pending := map[string][]*dynamodb.WriteRequest{s.table: requests[:n]}
		requests = requests[n:]

		for len(pending) > 0 {
			out, err := s.client.BatchWriteItemWithContext(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return errors.Wrap(err, "error from DynamoDB")
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}

func (s *DynamoStore) FindLine(ctx context.Context, name string) (model.Line, error) {
	item, err := s.getItem(ctx, name, metaIndex)
	if err != nil {
		return model.Line{}, err
	}
	if item == nil {
		return model.Line{}, errors.Wrap(model.ErrLineDoesNotExist, name)
	}
	return lineOf(item), nil
}

func (s *DynamoStore) noteItems(ctx context.Context, name string) ([]*dynamoItem, error) {
	var items []*dynamoItem
	var decodeErr error
	err := s.client.QueryPagesWithContext(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk AND sk >= :first"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":pk":    {S: aws.String(name)},
			":first": {N: aws.String("0")},
		},
		ConsistentRead: aws.Bool(true),
	}, func(page *dynamodb.QueryOutput, last bool) bool {
		for _, raw := range page.Items {
			var item dynamoItem
			if err := dynamodbattribute.UnmarshalMap(raw, &item); err != nil {
				decodeErr = errors.Wrap(err, "decoding item")
				return false
			}
			items = append(items, &item)
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrap(err, "error from DynamoDB")
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].SK < items[j].SK
	})
	return items, nil
}

func (s *DynamoStore) Notes(ctx context.Context, name string) ([]model.SymbolicNote, error) {
	l, err := s.FindLine(ctx, name)
	if err != nil {
		return nil, err
	}
	items, err := s.noteItems(ctx, name)
	if err != nil {
		return nil, err
	}
	res := make([]model.SymbolicNote, 0, len(items))
	for _, item := range items {
		sn, err := storedNoteOf(l, item)
		if err != nil {
			return nil, err
		}
		res = append(res, sn.Note)
	}
	return res, nil
}

func (s *DynamoStore) DropLine(ctx context.Context, name string) error {
	if _, err := s.FindLine(ctx, name); err != nil {
		return err
	}
	items, err := s.noteItems(ctx, name)
	if err != nil {
		return err
	}

	requests := []*dynamodb.WriteRequest{{DeleteRequest: &dynamodb.DeleteRequest{Key: key(name, metaIndex)}}}
	for _, item := range items {
		requests = append(requests, &dynamodb.WriteRequest{DeleteRequest: &dynamodb.DeleteRequest{Key: key(name, item.SK)}})
	}
	return s.batchWrite(ctx, requests)
}

func (s *DynamoStore) Lines(ctx context.Context) ([]model.Line, error) {
	var res []model.Line
	var decodeErr error
	err := s.client.ScanPagesWithContext(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.table),
		FilterExpression: aws.String("sk = :meta"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":meta": {N: aws.String(strconv.Itoa(metaIndex))},
		},
	}, func(page *dynamodb.ScanOutput, last bool) bool {
		for _, raw := range page.Items {
			var item dynamoItem
			if err := dynamodbattribute.UnmarshalMap(raw, &item); err != nil {
				decodeErr = errors.Wrap(err, "decoding item")
				return false
			}
			res = append(res, lineOf(&item))
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrap(err, "error from DynamoDB")
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Name < res[j].Name
	})
	return res, nil
}

func (s *DynamoStore) noteAt(ctx context.Context, line model.Line, index int) (model.StoredNote, bool, error) {
	item, err := s.getItem(ctx, line.Name, index)
	if err != nil || item == nil {
		return model.StoredNote{}, false, err
	}
	sn, err := storedNoteOf(line, item)
	return sn, err == nil, err
}

func (s *DynamoStore) FirstNote(ctx context.Context, line string) (model.StoredNote, bool, error) {
	l, err := s.FindLine(ctx, line)
	if err != nil {
		return model.StoredNote{}, false, err
	}
	return s.noteAt(ctx, l, 0)
}

func (s *DynamoStore) NextNote(ctx context.Context, n model.StoredNote) (model.StoredNote, bool, error) {
	return s.noteAt(ctx, model.Line{ID: n.LineID, Name: n.Line}, n.Index+1)
}

// HasOutgoingTie is false for the last note of a line whatever its flag says.
func (s *DynamoStore) HasOutgoingTie(ctx context.Context, n model.StoredNote) (bool, error) {
	if !n.Note.TiedToNext {
		return false, nil
	}
	l, err := s.FindLine(ctx, n.Line)
	if err != nil {
		return false, err
	}
	return n.Index+1 < l.NumNotes, nil
}

func (s *DynamoStore) Close() error {
	return nil
}
