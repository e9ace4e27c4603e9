package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/marco/toonboard/internal/cache"
	"github.com/marco/toonboard/internal/retry"
)

// maxBodyBytes caps the size of a fetched source.
const maxBodyBytes = 32 << 20

// Loader fetches a source and parses it into a Table
type Loader struct {
	httpClient *http.Client
	retry      retry.Policy
	cache      cache.Cache
	cacheTTL   time.Duration
}

// LoaderConfig holds configuration for the Loader
type LoaderConfig struct {
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	OnRetry        retry.LogFunc
	// Cache, when set, keeps raw bodies of remote sources for CacheTTL.
	Cache    cache.Cache
	CacheTTL time.Duration
	// HTTPClient overrides the default client; Timeout is ignored then.
	HTTPClient *http.Client
}

// NewLoader creates a Loader. A zero config makes a single attempt with a
// 30 second timeout and no cache.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Loader{
		httpClient: client,
		retry: retry.Policy{
			MaxAttempts:    cfg.MaxAttempts,
			InitialBackoff: cfg.InitialBackoff,
			OnRetry:        cfg.OnRetry,
		},
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
	}
}

// Load fetches source and parses it without cleaning. Nothing is cached.
func (l *Loader) Load(ctx context.Context, source string) (*Table, error) {
	body, _, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	return ParseTable(body)
}

// LoadDataset fetches, parses and cleans source. A remote body is cached
// only after it cleaned without error.
func (l *Loader) LoadDataset(ctx context.Context, source string) (*Dataset, error) {
	body, fresh, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	t, err := ParseTable(body)
	if err != nil {
		return nil, err
	}
	ds, err := Clean(t)
	if err != nil {
		return nil, err
	}
	if fresh && l.cache != nil {
		if err := l.cache.Set(source, body, l.cacheTTL); err != nil {
			slog.Warn("failed to cache source", "source", source, "error", err)
		}
	}
	slog.Info("dataset loaded",
		"source", source,
		"rows", len(t.Rows),
		"records", ds.Len(),
		"dropped", len(t.Rows)-ds.Len(),
	)
	return ds, nil
}

// Fetch returns the raw body of source. http(s) URLs are fetched with GET;
// anything else is read as a local path.
func (l *Loader) Fetch(ctx context.Context, source string) ([]byte, error) {
	body, _, err := l.fetch(ctx, source)
	return body, err
}

// fetch reports fresh when body came from upstream rather than the cache or
// local disk.
func (l *Loader) fetch(ctx context.Context, source string) (body []byte, fresh bool, err error) {
	if path, ok := LocalPath(source); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false, &NetworkError{Source: source, Err: err}
		}
		return data, false, nil
	}

	if l.cache != nil {
		if data, ok := l.cache.Get(source); ok {
			slog.Debug("source served from cache", "source", source, "bytes", len(data))
			return data, false, nil
		}
	}

	err = l.retry.Do(ctx, func(ctx context.Context) error {
		var reqErr error
		body, reqErr = l.get(ctx, source)
		return reqErr
	})
	if err != nil {
		return nil, false, &NetworkError{Source: source, Err: err}
	}
	return body, true, nil
}

func (l *Loader) get(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &retry.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New("response body exceeds size limit")
	}
	return body, nil
}

// LocalPath reports whether source names a local file and returns its path.
func LocalPath(source string) (string, bool) {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// No scheme, or a Windows drive letter.
		return source, true
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return "", false
	case "file":
		return u.Path, true
	}
	return source, true
}
