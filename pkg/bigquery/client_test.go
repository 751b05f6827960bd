package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/gmlima14/irf/pkg/config"
)

type fakeIterator struct {
	rows []LoadRow
	err  error
	pos  int
}

func (f *fakeIterator) Next(dst interface{}) error {
	if f.err != nil {
		return f.err
	}
	if f.pos >= len(f.rows) {
		return iterator.Done
	}
	*(dst.(*LoadRow)) = f.rows[f.pos]
	f.pos++
	return nil
}

func TestLoadReference(t *testing.T) {
	var gotSQL string
	client := &Client{
		projectID: "proj",
		datasetID: "irf",
		loadTable: "vendor_load",
		query: func(_ context.Context, sql string) (rowIterator, error) {
			gotSQL = sql
			return &fakeIterator{rows: []LoadRow{
				{Vendor: "100", Load: bigquery.NullFloat64{Float64: 3.5, Valid: true}},
				{Vendor: "200"},
			}}, nil
		},
	}

	rows, err := client.LoadReference(context.Background())
	if err != nil {
		t.Fatalf("LoadReference returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Vendor != "100" || !rows[0].Load.Valid || rows[0].Load.Float64 != 3.5 {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].Load.Valid {
		t.Fatalf("expected null load for second row")
	}
	want := "SELECT CAST(`Vendor` AS STRING) AS `Vendor`, CAST(`carga_media` AS FLOAT64) AS `carga_media` FROM `proj.irf.vendor_load`"
	if gotSQL != want {
		t.Fatalf("unexpected sql:\n%s\nwant:\n%s", gotSQL, want)
	}
}

func TestLoadReferenceErrors(t *testing.T) {
	client := &Client{query: func(context.Context, string) (rowIterator, error) {
		return nil, errors.New("quota exceeded")
	}}
	if _, err := client.LoadReference(context.Background()); err == nil {
		t.Fatal("expected query error")
	}

	client.query = func(context.Context, string) (rowIterator, error) {
		return &fakeIterator{err: errors.New("bad row")}, nil
	}
	if _, err := client.LoadReference(context.Background()); err == nil {
		t.Fatal("expected iterator error")
	}

	var nilClient *Client
	if _, err := nilClient.LoadReference(context.Background()); !errors.Is(err, errClientNotInitialized) {
		t.Fatalf("expected errClientNotInitialized, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.GCPConfig{}, config.BigQueryConfig{Dataset: "irf", LoadTable: "t"}, nil); !errors.Is(err, errProjectIDRequired) {
		t.Fatalf("expected errProjectIDRequired, got %v", err)
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "p"}, config.BigQueryConfig{LoadTable: "t"}, nil); !errors.Is(err, errDatasetRequired) {
		t.Fatalf("expected errDatasetRequired, got %v", err)
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "p"}, config.BigQueryConfig{Dataset: "irf", LoadTable: " "}, nil); !errors.Is(err, errTableNameRequired) {
		t.Fatalf("expected errTableNameRequired, got %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusNotFound})) {
		t.Fatal("expected wrapped 404 to be not found")
	}
	if isNotFound(&googleapi.Error{Code: http.StatusForbidden}) {
		t.Fatal("403 is not a not-found error")
	}
	if isNotFound(errors.New("plain")) {
		t.Fatal("plain errors are not not-found errors")
	}
}

func TestClientOptionsPrioritizesJSON(t *testing.T) {
	gcp := config.GCPConfig{
		CredentialsJSON:        `{"dummy": "value"}`,
		ApplicationCredentials: "/tmp/creds",
	}

	opts := clientOptions(gcp)
	if len(opts) != 1 {
		t.Fatalf("expected 1 option, got %d", len(opts))
	}
}

func TestClientOptionsEmpty(t *testing.T) {
	if opts := clientOptions(config.GCPConfig{}); len(opts) != 0 {
		t.Fatalf("expected 0 options when no credentials provided, got %d", len(opts))
	}
}
