package sources

import (
	"context"

	"github.com/gmlima14/irf/internal/loadref"
	"github.com/gmlima14/irf/pkg/bigquery"
	"github.com/gmlima14/irf/pkg/dynamodb"
	"github.com/gmlima14/irf/pkg/errors"
)

// LoadReferenceSource provides the vendor load reference table.
type LoadReferenceSource interface {
	LoadReference(ctx context.Context) (loadref.Table, error)
}

// BlobLoadReference parses a CSV or XLSX reference sheet.
type BlobLoadReference struct {
	Blob Blob
}

func (s BlobLoadReference) LoadReference(ctx context.Context) (loadref.Table, error) {
	name, data, err := s.Blob.Fetch(ctx)
	if err != nil {
		return loadref.Table{}, err
	}
	return loadref.Read(name, data)
}

type bigQueryLoadReader interface {
	LoadReference(ctx context.Context) ([]bigquery.LoadRow, error)
}

// BigQueryLoadReference reads the reference from a warehouse table.
type BigQueryLoadReference struct {
	Client bigQueryLoadReader
}

func (s BigQueryLoadReference) LoadReference(ctx context.Context) (loadref.Table, error) {
	rows, err := s.Client.LoadReference(ctx)
	if err != nil {
		return loadref.Table{}, errors.Wrap(errors.CodeDependency, err, "bigquery load reference failed")
	}
	entries := make([]loadref.Entry, 0, len(rows))
	for _, row := range rows {
		e := loadref.Entry{Vendor: row.Vendor}
		if row.Load.Valid {
			v := row.Load.Float64
			e.Value = &v
		}
		entries = append(entries, e)
	}
	return loadref.NewTable(entries), nil
}

type dynamoLoadReader interface {
	LoadReference(ctx context.Context) ([]dynamodb.LoadItem, error)
}

// DynamoLoadReference reads the reference from a DynamoDB table.
type DynamoLoadReference struct {
	Client dynamoLoadReader
}

func (s DynamoLoadReference) LoadReference(ctx context.Context) (loadref.Table, error) {
	items, err := s.Client.LoadReference(ctx)
	if err != nil {
		return loadref.Table{}, errors.Wrap(errors.CodeDependency, err, "dynamodb load reference failed")
	}
	entries := make([]loadref.Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, loadref.Entry{Vendor: item.Vendor, Value: item.Load})
	}
	return loadref.NewTable(entries), nil
}
