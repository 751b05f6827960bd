package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	Report     ReportConfig
	Sources    SourcesConfig
	Classifier ClassifierConfig
	Cache      CacheConfig
	Redis      RedisConfig
	GCP        GCPConfig
	GCS        GCSConfig
	BigQuery   BigQueryConfig
	DynamoDB   DynamoDBConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"IRF_APP_ENV" default:"dev"`
	Port         string `envconfig:"IRF_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"IRF_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"IRF_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ReportConfig struct {
	Timezone    string `envconfig:"IRF_REPORT_TIMEZONE" default:"America/Sao_Paulo"`
	OutputDir   string `envconfig:"IRF_REPORT_OUTPUT_DIR" default:"."`
	DayFirst    bool   `envconfig:"IRF_REPORT_DAY_FIRST" default:"false"`
	MaxUploadMB int    `envconfig:"IRF_REPORT_MAX_UPLOAD_MB" default:"20"`
}

// Location resolves the report timezone, falling back to UTC when the name is unknown.
func (r ReportConfig) Location() *time.Location {
	name := strings.TrimSpace(r.Timezone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MaxUploadBytes returns the upload limit in bytes.
func (r ReportConfig) MaxUploadBytes() int64 {
	if r.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return int64(r.MaxUploadMB) << 20
}

// SourcesConfig selects where the load reference table comes from.
type SourcesConfig struct {
	LoadReferenceKind     string        `envconfig:"IRF_LOAD_REFERENCE_SOURCE" default:"file"`
	LoadReferenceLocation string        `envconfig:"IRF_LOAD_REFERENCE_LOCATION"`
	HTTPTimeout           time.Duration `envconfig:"IRF_SOURCES_HTTP_TIMEOUT" default:"30s"`
}

// ClassifierConfig selects the model backend. Kind "logistic" loads a model
// artifact from ArtifactKind/ArtifactLocation, kind "http" calls Endpoint.
type ClassifierConfig struct {
	Kind             string        `envconfig:"IRF_CLASSIFIER_KIND" default:"logistic"`
	ArtifactKind     string        `envconfig:"IRF_CLASSIFIER_SOURCE" default:"file"`
	ArtifactLocation string        `envconfig:"IRF_CLASSIFIER_LOCATION"`
	Endpoint         string        `envconfig:"IRF_CLASSIFIER_ENDPOINT"`
	Timeout          time.Duration `envconfig:"IRF_CLASSIFIER_TIMEOUT" default:"60s"`
}

type CacheConfig struct {
	Enabled bool          `envconfig:"IRF_CACHE_ENABLED" default:"false"`
	TTL     time.Duration `envconfig:"IRF_CACHE_TTL" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"IRF_REDIS_URL"`
	Address      string        `envconfig:"IRF_REDIS_ADDR"`
	Password     string        `envconfig:"IRF_REDIS_PASSWORD"`
	DB           int           `envconfig:"IRF_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"IRF_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"IRF_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"IRF_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"IRF_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"IRF_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"IRF_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"IRF_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"IRF_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"IRF_GCS_BUCKET_NAME"`
}

type BigQueryConfig struct {
	Dataset   string `envconfig:"IRF_BIGQUERY_DATASET" default:"irf"`
	LoadTable string `envconfig:"IRF_BIGQUERY_LOAD_TABLE" default:"vendor_load"`
}

type DynamoDBConfig struct {
	Region    string `envconfig:"IRF_DYNAMODB_REGION" default:"us-east-1"`
	Endpoint  string `envconfig:"IRF_DYNAMODB_ENDPOINT"`
	LoadTable string `envconfig:"IRF_DYNAMODB_LOAD_TABLE" default:"vendor_load"`
}

func (c *Config) validate() error {
	c.Sources.LoadReferenceKind = normalizeKind(c.Sources.LoadReferenceKind)
	c.Classifier.Kind = normalizeKind(c.Classifier.Kind)
	c.Classifier.ArtifactKind = normalizeKind(c.Classifier.ArtifactKind)

	if !contains(loadReferenceKinds, c.Sources.LoadReferenceKind) {
		return fmt.Errorf("%s must be one of %s", EnvLoadReferenceSource, strings.Join(loadReferenceKinds, ", "))
	}
	if requiresLocation(c.Sources.LoadReferenceKind) && strings.TrimSpace(c.Sources.LoadReferenceLocation) == "" {
		return fmt.Errorf("%s is required for source %q", EnvLoadReferenceLocation, c.Sources.LoadReferenceKind)
	}

	switch c.Classifier.Kind {
	case ClassifierLogistic:
		if !contains(blobKinds, c.Classifier.ArtifactKind) {
			return fmt.Errorf("%s must be one of %s", EnvClassifierSource, strings.Join(blobKinds, ", "))
		}
		if strings.TrimSpace(c.Classifier.ArtifactLocation) == "" {
			return fmt.Errorf("%s is required", EnvClassifierLocation)
		}
	case ClassifierHTTP:
		if strings.TrimSpace(c.Classifier.Endpoint) == "" {
			return fmt.Errorf("%s is required for classifier %q", EnvClassifierEndpoint, ClassifierHTTP)
		}
	default:
		return fmt.Errorf("%s must be %q or %q", EnvClassifierKind, ClassifierLogistic, ClassifierHTTP)
	}

	if c.usesKind(SourceGCS) && strings.TrimSpace(c.GCS.BucketName) == "" {
		return fmt.Errorf("%s is required when a gcs source is configured", EnvGCSBucket)
	}
	if c.usesKind(SourceBigQuery) && strings.TrimSpace(c.GCP.ProjectID) == "" {
		return fmt.Errorf("%s is required when the bigquery source is configured", EnvGCPProjectID)
	}
	if c.Cache.Enabled && c.Redis.URL == "" && c.Redis.Address == "" {
		return fmt.Errorf("either %s or %s is required when %s is set", EnvRedisURL, EnvRedisAddr, EnvCacheEnabled)
	}
	return nil
}

func (c *Config) usesKind(kind string) bool {
	if c.Sources.LoadReferenceKind == kind {
		return true
	}
	return c.Classifier.Kind == ClassifierLogistic && c.Classifier.ArtifactKind == kind
}

func requiresLocation(kind string) bool {
	return kind != SourceBigQuery && kind != SourceDynamoDB
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
