package storage

import (
	"context"
	"errors"
	"fmt"

	"eduadmin-client/models"
	"eduadmin-client/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// DynamoStore is a KeyValueStore backed by a single DynamoDB table. It serves
// kiosk and shared-terminal deployments where session state must survive the
// device, not just the process.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
	logger logger.Logger
}

// dynamoRecord is the table item shape.
type dynamoRecord struct {
	Key   string `dynamodbav:"record_key"`
	Value string `dynamodbav:"record_value"`
}

// NewDynamoStore creates a DynamoDB-backed store from configuration.
func NewDynamoStore(cfg *models.Config, log logger.Logger) (*DynamoStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Override endpoint for local DynamoDB
	if cfg.DynamoDBEndpoint != "" {
		awsCfg.EndpointResolver = aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:           cfg.DynamoDBEndpoint,
				SigningRegion: cfg.AWSRegion,
			}, nil
		})
	}

	// Use static credentials if provided
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		))
	}

	store := &DynamoStore{
		client: dynamodb.NewFromConfig(awsCfg),
		table:  cfg.DynamoDBTable,
		logger: log,
	}

	log.Infof("DynamoDB session store initialized (table: %s)", cfg.DynamoDBTable)
	return store, nil
}

func (s *DynamoStore) Get(ctx context.Context, key string) (string, bool, error) {
	output, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"record_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to get item %s: %w", key, describeAWSError(err))
	}

	if output.Item == nil {
		return "", false, nil
	}

	var record dynamoRecord
	if err := attributevalue.UnmarshalMap(output.Item, &record); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal item %s: %w", key, err)
	}

	return record.Value, true, nil
}

func (s *DynamoStore) Set(ctx context.Context, key, value string) error {
	item, err := attributevalue.MarshalMap(dynamoRecord{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("failed to marshal item %s: %w", key, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put item %s: %w", key, describeAWSError(err))
	}

	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"record_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", key, describeAWSError(err))
	}

	return nil
}

// describeAWSError surfaces the AWS error code when one is available.
func describeAWSError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return err
}
