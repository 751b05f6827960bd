package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/gmlima14/irf/pkg/config"
	"github.com/gmlima14/irf/pkg/env"
	"github.com/gmlima14/irf/pkg/logger"
)

var (
	errTableNameRequired    = errors.New("dynamodb load table is required")
	errClientNotInitialized = errors.New("dynamodb client not initialized")
)

// LoadItem is one vendor's historical average load. Load is nil for items
// without a carga_media attribute.
type LoadItem struct {
	Vendor string   `dynamodbav:"Vendor"`
	Load   *float64 `dynamodbav:"carga_media"`
}

// Client reads the vendor load table.
type Client struct {
	api       dynamodb.ScanAPIClient
	loadTable string
}

// NewClient builds a DynamoDB client. A configured endpoint (DynamoDB Local)
// gets static credentials, since the local server does not check them.
func NewClient(ctx context.Context, cfg config.DynamoDBConfig, logg *logger.Logger) (*Client, error) {
	table := strings.TrimSpace(cfg.LoadTable)
	if table == "" {
		return nil, errTableNameRequired
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			env.Get("AWS_ACCESS_KEY_ID", "local"),
			env.Get("AWS_SECRET_ACCESS_KEY", "local"),
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	api := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("dynamodb client initialized table=%s", table))
	}
	return &Client{api: api, loadTable: table}, nil
}

// LoadReference scans the whole load table.
func (c *Client) LoadReference(ctx context.Context) ([]LoadItem, error) {
	if c == nil || c.api == nil {
		return nil, errClientNotInitialized
	}

	paginator := dynamodb.NewScanPaginator(c.api, &dynamodb.ScanInput{
		TableName: aws.String(c.loadTable),
	})

	var items []LoadItem
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", c.loadTable, err)
		}
		var batch []LoadItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("decoding %s items: %w", c.loadTable, err)
		}
		items = append(items, batch...)
	}
	return items, nil
}
