package sources

import (
	"context"
	"path"
	"strings"

	"github.com/gmlima14/irf/pkg/errors"
)

type objectDownloader interface {
	Download(ctx context.Context, bucket, object string) ([]byte, error)
}

// GCSBlob downloads an object. Location is "object" in the default bucket
// or "gs://bucket/object".
type GCSBlob struct {
	Client   objectDownloader
	Location string
}

func (b GCSBlob) Fetch(ctx context.Context) (string, []byte, error) {
	if b.Client == nil {
		return "", nil, errors.New(errors.CodeDependency, "gcs client not configured")
	}
	bucket, object := splitGCSLocation(b.Location)
	data, err := b.Client.Download(ctx, bucket, object)
	if err != nil {
		return "", nil, errors.Wrap(errors.CodeDependency, err, "gcs download failed")
	}
	return withExtension(path.Base(object), data), data, nil
}

func splitGCSLocation(location string) (bucket, object string) {
	location = strings.TrimSpace(location)
	if !strings.HasPrefix(location, "gs://") {
		return "", location
	}
	rest := strings.TrimPrefix(location, "gs://")
	bucket, object, _ = strings.Cut(rest, "/")
	return bucket, object
}
