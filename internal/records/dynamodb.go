package records

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/nguyentantai21042004/lecture-recap/internal/apperr"
)

// createdAtLayout matches an ISO-8601 timestamp with microseconds and no zone suffix.
const createdAtLayout = "2006-01-02T15:04:05.000000"

type itemPutter interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type implDynamo struct {
	api   itemPutter
	table string
}

// NewDynamoDB creates a Store writing one item per record into table
func NewDynamoDB(client *dynamodb.Client, table string) Store {
	return &implDynamo{api: client, table: table}
}

func (s *implDynamo) Put(ctx context.Context, rec Record) error {
	item, err := marshalRecord(rec)
	if err != nil {
		return apperr.New(apperr.KindStorage, "records put", err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return apperr.New(apperr.KindStorage, "records put", err)
	}
	return nil
}

func marshalRecord(rec Record) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, err
	}
	item["created_at"] = &types.AttributeValueMemberS{Value: rec.CreatedAt.UTC().Format(createdAtLayout)}
	return item, nil
}
