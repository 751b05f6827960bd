// Package sources fetches the inputs a scoring run depends on: the vendor
// load reference and the delivery classifier, from local files, URLs,
// Google Drive, GCS, BigQuery or DynamoDB.
package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gmlima14/irf/pkg/errors"
)

const (
	driveDownloadURL = "https://drive.google.com/uc"
	errBodyLimit     = 1024
)

var zipMagic = []byte("PK\x03\x04")

// Blob fetches one file. name carries the extension used to pick a parser.
type Blob interface {
	Fetch(ctx context.Context) (name string, data []byte, err error)
}

// FileBlob reads a local file.
type FileBlob struct {
	Path string
}

func (b FileBlob) Fetch(ctx context.Context) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(b.Path)
	if err != nil {
		return "", nil, errors.Wrap(errors.CodeDependency, err, fmt.Sprintf("reading %s", b.Path))
	}
	return withExtension(filepath.Base(b.Path), data), data, nil
}

// HTTPBlob downloads a file with GET.
type HTTPBlob struct {
	URL    string
	Client *http.Client
}

func (b HTTPBlob) Fetch(ctx context.Context) (string, []byte, error) {
	return download(ctx, b.Client, b.URL)
}

// DriveBlob downloads a publicly shared Google Drive file by id.
type DriveBlob struct {
	FileID string
	Client *http.Client
	// BaseURL overrides the Drive download endpoint.
	BaseURL string
}

func (b DriveBlob) Fetch(ctx context.Context) (string, []byte, error) {
	base := b.BaseURL
	if base == "" {
		base = driveDownloadURL
	}
	q := url.Values{}
	q.Set("export", "download")
	q.Set("id", strings.TrimSpace(b.FileID))
	return download(ctx, b.Client, base+"?"+q.Encode())
}

// DriveFileID accepts a bare id or a drive.google.com sharing link.
func DriveFileID(location string) string {
	location = strings.TrimSpace(location)
	u, err := url.Parse(location)
	if err != nil || u.Host == "" {
		return location
	}
	if id := u.Query().Get("id"); id != "" {
		return id
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "d" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return location
}

func download(ctx context.Context, client *http.Client, rawURL string) (string, []byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, errors.Wrap(errors.CodeDependency, err, "build download request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", nil, errors.Wrap(errors.CodeDependency, err, "download failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return "", nil, errors.Wrap(errors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "download failed")
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		return "", nil, errors.New(errors.CodeDependency, "download returned an html page; check the file is shared publicly")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, errors.Wrap(errors.CodeDependency, err, "reading download body")
	}

	name := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	if name == "" {
		name = path.Base(req.URL.Path)
	}
	return withExtension(name, data), data, nil
}

// withExtension appends .xlsx or .csv when name has no spreadsheet
// extension, judging by the zip signature.
func withExtension(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", ".xlsx", ".xlsm", ".json":
		return name
	}
	if name == "" || name == "." || name == "/" {
		name = "download"
	}
	if bytes.HasPrefix(data, zipMagic) {
		return name + ".xlsx"
	}
	return name + ".csv"
}
