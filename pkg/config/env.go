package config

const EnvPrefix = "IRF"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourceDrive    = "gdrive"
	SourceGCS      = "gcs"
	SourceBigQuery = "bigquery"
	SourceDynamoDB = "dynamodb"
)

const (
	ClassifierLogistic = "logistic"
	ClassifierHTTP     = "http"
)

var (
	blobKinds          = []string{SourceFile, SourceHTTP, SourceDrive, SourceGCS}
	loadReferenceKinds = []string{SourceFile, SourceHTTP, SourceDrive, SourceGCS, SourceBigQuery, SourceDynamoDB}
)

const (
	EnvAppEnv                = "IRF_APP_ENV"
	EnvPort                  = "IRF_APP_PORT"
	EnvLogLevel              = "IRF_LOG_LEVEL"
	EnvReportTimezone        = "IRF_REPORT_TIMEZONE"
	EnvReportOutputDir       = "IRF_REPORT_OUTPUT_DIR"
	EnvReportDayFirst        = "IRF_REPORT_DAY_FIRST"
	EnvLoadReferenceSource   = "IRF_LOAD_REFERENCE_SOURCE"
	EnvLoadReferenceLocation = "IRF_LOAD_REFERENCE_LOCATION"
	EnvClassifierKind        = "IRF_CLASSIFIER_KIND"
	EnvClassifierSource      = "IRF_CLASSIFIER_SOURCE"
	EnvClassifierLocation    = "IRF_CLASSIFIER_LOCATION"
	EnvClassifierEndpoint    = "IRF_CLASSIFIER_ENDPOINT"
	EnvCacheEnabled          = "IRF_CACHE_ENABLED"
	EnvRedisURL              = "IRF_REDIS_URL"
	EnvRedisAddr             = "IRF_REDIS_ADDR"
	EnvGCPProjectID          = "IRF_GCP_PROJECT_ID"
	EnvGCSBucket             = "IRF_GCS_BUCKET_NAME"
	EnvBigQueryDataset       = "IRF_BIGQUERY_DATASET"
	EnvDynamoDBLoadTable     = "IRF_DYNAMODB_LOAD_TABLE"
)
