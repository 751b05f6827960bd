package gcs

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gmlima14/irf/pkg/config"
)

func TestDownload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header %q", got)
		}
		switch {
		case r.URL.EscapedPath() == "/storage/v1/b/irf-bucket/o" && r.URL.Query().Get("maxResults") == "1":
			_, _ = w.Write([]byte(`{"items":[]}`))
		case r.URL.EscapedPath() == "/storage/v1/b/irf-bucket/o/models%2Firf.json" && r.URL.Query().Get("alt") == "media":
			_, _ = w.Write([]byte(`{"features":["MATKL"]}`))
		default:
			http.Error(w, "no such object", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), config.GCSConfig{BucketName: "irf-bucket"}, config.GCPConfig{}, nil,
		WithBaseURL(srv.URL), WithStaticToken("test-token"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	data, err := client.Download(context.Background(), "", "/models/irf.json")
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if string(data) != `{"features":["MATKL"]}` {
		t.Fatalf("unexpected object body %q", data)
	}

	_, err = client.Download(context.Background(), "", "missing.xlsx")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}

	if _, err := client.Download(context.Background(), "", " "); err == nil {
		t.Fatal("expected error for blank object name")
	}
}

func TestNewClientRequiresBucket(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(context.Background(), config.GCSConfig{}, config.GCPConfig{}, nil); err == nil {
		t.Fatal("expected error without bucket")
	}
}

func TestPingFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(context.Background(), config.GCSConfig{BucketName: "b"}, config.GCPConfig{}, nil,
		WithBaseURL(srv.URL), WithStaticToken("t"))
	if err == nil || !strings.Contains(err.Error(), "forbidden") {
		t.Fatalf("expected forbidden ping error, got %v", err)
	}
}

func TestServiceAccountTokenSource(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	var calls int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "urn:ietf:params:oauth:grant-type:jwt-bearer" {
			t.Errorf("unexpected grant type %q", got)
		}
		if parts := strings.Split(r.PostForm.Get("assertion"), "."); len(parts) != 3 {
			t.Errorf("assertion should be a signed jwt, got %d parts", len(parts))
		}
		_, _ = w.Write([]byte(`{"access_token":"sa-token","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	creds, _ := json.Marshal(map[string]string{
		"client_email": "irf@example.iam.gserviceaccount.com",
		"private_key":  string(pemKey),
		"token_uri":    tokenSrv.URL,
	})
	ts, err := newServiceAccountTokenSource(tokenSrv.Client(), string(creds))
	if err != nil {
		t.Fatalf("newServiceAccountTokenSource returned error: %v", err)
	}

	for i := 0; i < 2; i++ {
		token, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("Token returned error: %v", err)
		}
		if token != "sa-token" {
			t.Fatalf("unexpected token %q", token)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected cached token after first fetch, got %d calls", got)
	}
}

func TestServiceAccountTokenSourceRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"not json":    "{",
		"no email":    `{"private_key":"x"}`,
		"invalid pem": `{"client_email":"a@b","private_key":"not a key"}`,
	}
	for name, creds := range tests {
		if _, err := newServiceAccountTokenSource(http.DefaultClient, creds); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
