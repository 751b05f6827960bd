package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/multierr"

	"github.com/gmlima14/irf/internal/prediction"
	"github.com/gmlima14/irf/pkg/bigquery"
	"github.com/gmlima14/irf/pkg/config"
	"github.com/gmlima14/irf/pkg/dynamodb"
	"github.com/gmlima14/irf/pkg/logger"
	"github.com/gmlima14/irf/pkg/redis"
	"github.com/gmlima14/irf/pkg/storage/gcs"
)

// Provider bundles the sources one scoring run reads from.
type Provider struct {
	LoadReference LoadReferenceSource
	Classifier    ClassifierSource
	// Describe names the configured sources for logs.
	Describe string

	closers []io.Closer
	pingers map[string]redis.Pinger
}

// Pingers returns health checks for the remote clients Build opened.
func (p *Provider) Pingers() map[string]redis.Pinger {
	out := make(map[string]redis.Pinger)
	if p == nil {
		return out
	}
	for name, c := range p.pingers {
		out[name] = c
	}
	return out
}

// Close releases clients opened by Build.
func (p *Provider) Close() error {
	if p == nil {
		return nil
	}
	var err error
	for _, c := range p.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// Deps are shared clients Build may reuse. All fields are optional.
type Deps struct {
	Logger     *logger.Logger
	Redis      redis.BlobStore
	HTTPClient *http.Client
}

// Build selects source implementations from configuration and opens the
// cloud clients they need.
func Build(ctx context.Context, cfg *config.Config, deps Deps) (p *Provider, err error) {
	p = &Provider{pingers: make(map[string]redis.Pinger)}
	defer func() {
		if err != nil {
			err = multierr.Append(err, p.Close())
			p = nil
		}
	}()

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Sources.HTTPTimeout}
	}

	var gcsClient *gcs.Client
	openGCS := func() (*gcs.Client, error) {
		if gcsClient != nil {
			return gcsClient, nil
		}
		c, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, deps.Logger)
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		gcsClient = c
		p.closers = append(p.closers, c)
		p.pingers["gcs"] = c
		return c, nil
	}

	blob := func(kind, location string) (Blob, error) {
		var b Blob
		switch kind {
		case config.SourceFile:
			return FileBlob{Path: location}, nil
		case config.SourceHTTP:
			b = HTTPBlob{URL: location, Client: httpClient}
		case config.SourceDrive:
			b = DriveBlob{FileID: DriveFileID(location), Client: httpClient}
		case config.SourceGCS:
			c, err := openGCS()
			if err != nil {
				return nil, err
			}
			b = GCSBlob{Client: c, Location: location}
		default:
			return nil, fmt.Errorf("unsupported blob source %q", kind)
		}
		if cfg.Cache.Enabled && deps.Redis != nil {
			b = CachedBlob{Inner: b, Store: deps.Redis, Kind: kind, Key: location, TTL: cfg.Cache.TTL, Logger: deps.Logger}
		}
		return b, nil
	}

	switch kind := cfg.Sources.LoadReferenceKind; kind {
	case config.SourceBigQuery:
		c, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, deps.Logger)
		if err != nil {
			return nil, fmt.Errorf("bigquery: %w", err)
		}
		p.closers = append(p.closers, c)
		p.pingers["bigquery"] = c
		p.LoadReference = BigQueryLoadReference{Client: c}
	case config.SourceDynamoDB:
		c, err := dynamodb.NewClient(ctx, cfg.DynamoDB, deps.Logger)
		if err != nil {
			return nil, fmt.Errorf("dynamodb: %w", err)
		}
		p.LoadReference = DynamoLoadReference{Client: c}
	default:
		b, err := blob(kind, cfg.Sources.LoadReferenceLocation)
		if err != nil {
			return nil, fmt.Errorf("load reference: %w", err)
		}
		p.LoadReference = BlobLoadReference{Blob: b}
	}

	switch cfg.Classifier.Kind {
	case config.ClassifierHTTP:
		c, err := prediction.NewHTTPClassifier(cfg.Classifier.Endpoint,
			prediction.WithHTTPClient(&http.Client{Timeout: cfg.Classifier.Timeout}))
		if err != nil {
			return nil, fmt.Errorf("classifier: %w", err)
		}
		p.Classifier = RemoteClassifier{Client: c}
	default:
		b, err := blob(cfg.Classifier.ArtifactKind, cfg.Classifier.ArtifactLocation)
		if err != nil {
			return nil, fmt.Errorf("classifier artifact: %w", err)
		}
		p.Classifier = ModelArtifact{Blob: b}
	}

	p.Describe = describe(cfg)
	return p, nil
}

func describe(cfg *config.Config) string {
	parts := []string{"load_reference=" + cfg.Sources.LoadReferenceKind}
	if cfg.Classifier.Kind == config.ClassifierHTTP {
		parts = append(parts, "classifier=http")
	} else {
		parts = append(parts, "classifier="+cfg.Classifier.ArtifactKind)
	}
	if cfg.Cache.Enabled {
		parts = append(parts, "cache=redis")
	}
	return strings.Join(parts, " ")
}
