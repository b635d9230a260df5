package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestClient() *Client {
	return NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
}

func gzipped(t *testing.T, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDownload(t *testing.T) {
	payload := []byte("CDF\x01 not really a dataset")
	body := gzipped(t, payload)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pub/gistemp/data.nc.gz" {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dst := filepath.Join(dir, "data.nc")
	if err := os.WriteFile(dst, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	n, err := newTestClient().Download(context.Background(), srv.URL+"/pub/gistemp/data.nc.gz", dst)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(payload)) {
		t.Errorf("bytes: got %d, want %d", n, len(payload))
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("contents: got %q, want %q", got, payload)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("unexpected files left in %s: %v", dir, entries)
	}
}

func TestDownloadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/plain":
			w.Write([]byte("not gzip"))
		}
	}))
	defer srv.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"not found", srv.URL + "/missing"},
		{"not gzip", srv.URL + "/plain"},
		{"unsupported scheme", "ftp://data.giss.nasa.gov/pub/gistemp/x.nc.gz"},
		{"bad url", "http://[::1"},
	}
	for _, tt := range tests {
		dir := t.TempDir()
		dst := filepath.Join(dir, "data.nc")
		if _, err := newTestClient().Download(context.Background(), tt.url, dst); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
		if entries, _ := os.ReadDir(dir); len(entries) != 0 {
			t.Errorf("%s: files left behind: %v", tt.name, entries)
		}
	}
}

func TestDownloadCanceled(t *testing.T) {
	body := gzipped(t, []byte("x"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClient().Download(ctx, srv.URL, filepath.Join(t.TempDir(), "x.nc")); err == nil {
		t.Fatal("expected error for a canceled context")
	}
}
