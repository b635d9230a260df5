// Package fetch downloads the gzipped GISTEMP dataset.
package fetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// DefaultURL is where GISS publishes the 1200 km smoothed GHCNv4/ERSSTv5
// analysis.
const DefaultURL = "https://data.giss.nasa.gov/pub/gistemp/gistemp1200_GHCNv4_ERSSTv5.nc.gz"

// Client downloads and decompresses dataset files.
type Client struct {
	logger  *slog.Logger
	httpCli *http.Client
}

// NewClient creates a new download client. A zero timeout disables the
// overall request timeout.
func NewClient(logger *slog.Logger, timeout time.Duration) *Client {
	return &Client{
		logger: logger,
		httpCli: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:    1,
				IdleConnTimeout: 30 * time.Second,
			},
		},
	}
}

// Download fetches the gzip compressed file at rawURL and writes the
// decompressed contents to dst. dst is only replaced once the whole body has
// been read and decompressed.
func (c *Client) Download(ctx context.Context, rawURL, dst string) (int64, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return 0, fmt.Errorf("downloading from %q is not supported", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	res, err := c.httpCli.Do(req)
	if err != nil {
		return 0, fmt.Errorf("could not get %s: %w", rawURL, err)
	}
	defer func() {
		if _, err := io.Copy(io.Discard, res.Body); err != nil {
			c.logger.Error("Failed to drain response body", "err", err)
		}
		res.Body.Close()
	}()
	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("could not get %s: unexpected status %d", rawURL, res.StatusCode)
	}

	zr, err := gzip.NewReader(res.Body)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", rawURL, err)
	}
	defer zr.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, zr)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), dst)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("%s: %w", rawURL, err)
	}
	c.logger.Info("downloaded", "url", rawURL, "path", dst, "bytes", n,
		"in", time.Since(start).Round(time.Millisecond))
	return n, nil
}
