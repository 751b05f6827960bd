package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/gmlima14/irf/pkg/config"
	"github.com/gmlima14/irf/pkg/logger"
)

const (
	metadataCheckTimeout = 10 * time.Second

	vendorColumn = "Vendor"
	loadColumn   = "carga_media"
)

type Client struct {
	client    *bigquery.Client
	dataset   *bigquery.Dataset
	projectID string
	datasetID string
	loadTable string
	query     func(ctx context.Context, sql string) (rowIterator, error)
}

// rowIterator is the subset of *bigquery.RowIterator read by this package.
type rowIterator interface {
	Next(dst interface{}) error
}

// LoadRow is one vendor's historical average load.
type LoadRow struct {
	Vendor string               `bigquery:"Vendor"`
	Load   bigquery.NullFloat64 `bigquery:"carga_media"`
}

var (
	errProjectIDRequired    = errors.New("gcp project id is required")
	errDatasetRequired      = errors.New("bigquery dataset is required")
	errTableNameRequired    = errors.New("bigquery table name is required")
	errClientNotInitialized = errors.New("bigquery client not initialized")
)

type Pinger interface {
	Ping(context.Context) error
}

// NewClient creates a BigQuery client and verifies the configured dataset and load table.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.BigQueryConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}

	datasetID := strings.TrimSpace(cfg.Dataset)
	if datasetID == "" {
		return nil, errDatasetRequired
	}

	table := strings.TrimSpace(cfg.LoadTable)
	if table == "" {
		return nil, errTableNameRequired
	}

	bqClient, err := bigquery.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}

	client := &Client{
		client:    bqClient,
		dataset:   bqClient.Dataset(datasetID),
		projectID: projectID,
		datasetID: datasetID,
		loadTable: table,
	}
	client.query = func(ctx context.Context, sql string) (rowIterator, error) {
		return bqClient.Query(sql).Read(ctx)
	}

	if err := client.ensureDatasetAndTable(ctx); err != nil {
		_ = bqClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(ctx, "bigquery client initialized")
	}

	return client, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return opts
}

func (c *Client) ensureDatasetAndTable(ctx context.Context) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}

	ctx, cancel := context.WithTimeout(ctx, metadataCheckTimeout)
	defer cancel()

	if _, err := c.dataset.Metadata(ctx); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("dataset %q does not exist", c.dataset.DatasetID)
		}
		return fmt.Errorf("checking dataset %q: %w", c.dataset.DatasetID, err)
	}

	if _, err := c.dataset.Table(c.loadTable).Metadata(ctx); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("table %q does not exist", c.loadTable)
		}
		return fmt.Errorf("checking table %q: %w", c.loadTable, err)
	}

	return nil
}

// Ping verifies the dataset and load table are accessible.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errClientNotInitialized
	}
	return c.ensureDatasetAndTable(ctx)
}

// LoadReference reads every row of the vendor load table.
func (c *Client) LoadReference(ctx context.Context) ([]LoadRow, error) {
	if c == nil || c.query == nil {
		return nil, errClientNotInitialized
	}
	it, err := c.query(ctx, loadReferenceSQL(c.projectID, c.datasetID, c.loadTable))
	if err != nil {
		return nil, fmt.Errorf("querying load reference: %w", err)
	}

	var rows []LoadRow
	for {
		var row LoadRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading load reference row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func loadReferenceSQL(project, dataset, table string) string {
	return fmt.Sprintf(
		"SELECT CAST(`%s` AS STRING) AS `%s`, CAST(`%s` AS FLOAT64) AS `%s` FROM `%s.%s.%s`",
		vendorColumn, vendorColumn, loadColumn, loadColumn, project, dataset, table,
	)
}

// Close releases the BigQuery client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Code == http.StatusNotFound
	}
	return false
}
