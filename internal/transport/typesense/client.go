// Package typesense is the HTTP client for the external index engine. The
// handle is constructed explicitly and injected into components; there is no
// process-global client.
package typesense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/webntricks/unisearch/internal/domain"
	"github.com/webntricks/unisearch/internal/domain/document"
	"github.com/webntricks/unisearch/internal/domain/schema"
	domsearch "github.com/webntricks/unisearch/internal/domain/search"
)

// Config holds index engine connection settings.
type Config struct {
	Host       string
	Port       int
	Protocol   string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// Client talks to one Typesense node.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a client. An unconfigured client is valid; every call on it
// returns domain.ErrNotConfigured so indexing and search degrade silently.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Protocol == "" {
		cfg.Protocol = "https"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:     cfg,
		baseURL: fmt.Sprintf("%s://%s:%d", cfg.Protocol, cfg.Host, cfg.Port),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// Configured reports whether backend credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.Host != "" && c.cfg.Port != 0 && c.cfg.APIKey != ""
}

// Collection returns the configured collection name.
func (c *Client) Collection() string { return c.cfg.Collection }

// Health checks backend reachability via the health endpoint.
func (c *Client) Health(ctx context.Context) error {
	var status struct {
		OK bool `json:"ok"`
	}
	if err := c.call(ctx, http.MethodGet, "/health", nil, nil, &status); err != nil {
		return err
	}
	if !status.OK {
		return fmt.Errorf("health endpoint did not return ok=true: %w", domain.ErrBackendUnavailable)
	}
	return nil
}

// RetrieveCollection fetches the live collection schema.
func (c *Client) RetrieveCollection(ctx context.Context) (schema.Collection, error) {
	var live schema.Collection
	err := c.call(ctx, http.MethodGet, "/collections/"+url.PathEscape(c.cfg.Collection), nil, nil, &live)
	if err != nil {
		return schema.Collection{}, err
	}
	return live, nil
}

// CreateCollection creates a collection from the given schema.
func (c *Client) CreateCollection(ctx context.Context, s schema.Collection) error {
	return c.call(ctx, http.MethodPost, "/collections", nil, s, nil)
}

// DeleteCollection drops the collection.
func (c *Client) DeleteCollection(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, "/collections/"+url.PathEscape(c.cfg.Collection), nil, nil, nil)
}

// Upsert creates or replaces one document, keyed by its ID.
func (c *Client) Upsert(ctx context.Context, doc document.Document) error {
	q := url.Values{"action": {"upsert"}}
	return c.call(ctx, http.MethodPost, c.documentsPath(), q, doc, nil)
}

// Delete removes one document. A missing document maps to domain.ErrNotFound.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, c.documentsPath()+"/"+url.PathEscape(id), nil, nil, nil)
}

// DeleteByFilter removes every document matching the filter expression.
func (c *Client) DeleteByFilter(ctx context.Context, filter string) error {
	q := url.Values{"filter_by": {filter}}
	return c.call(ctx, http.MethodDelete, c.documentsPath(), q, nil, nil)
}

// Import bulk-upserts documents as JSONL with lenient type coercion.
func (c *Client) Import(ctx context.Context, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if !c.Configured() {
		return domain.ErrNotConfigured
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, d := range docs {
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode document %s: %w", d.ID, err)
		}
	}

	q := url.Values{"action": {"upsert"}, "dirty_values": {"coerce_or_drop"}}
	u := c.baseURL + c.documentsPath() + "/import?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return fmt.Errorf("build import request: %w", err)
	}
	req.Header.Set("X-TYPESENSE-API-KEY", c.cfg.APIKey)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("import: %v: %w", err, domain.ErrBackendUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return c.statusError(resp)
	}
	return nil
}

// Search runs a translated query and decodes the ranked hits.
func (c *Client) Search(ctx context.Context, p domsearch.Params) (domsearch.Results, error) {
	q := url.Values{
		"q":        {p.Query},
		"query_by": {p.QueryBy},
		"page":     {strconv.Itoa(p.Page)},
		"per_page": {strconv.Itoa(p.PerPage)},
	}
	if p.FilterBy != "" {
		q.Set("filter_by", p.FilterBy)
	}
	if p.SortBy != "" {
		q.Set("sort_by", p.SortBy)
	}
	if p.Highlight != "" {
		q.Set("highlight_full_fields", p.Highlight)
	}

	var raw struct {
		Found int `json:"found"`
		Page  int `json:"page"`
		Hits  []struct {
			Document   document.Document `json:"document"`
			Highlights []struct {
				Field   string `json:"field"`
				Snippet string `json:"snippet"`
			} `json:"highlights"`
		} `json:"hits"`
	}
	if err := c.call(ctx, http.MethodGet, c.documentsPath()+"/search", q, nil, &raw); err != nil {
		return domsearch.Results{}, err
	}

	results := domsearch.Results{
		Hits:  make([]domsearch.Hit, 0, len(raw.Hits)),
		Found: raw.Found,
		Page:  raw.Page,
	}
	for _, h := range raw.Hits {
		hit := domsearch.Hit{Document: h.Document}
		for _, hl := range h.Highlights {
			hit.Highlights = append(hit.Highlights, domsearch.Highlight{
				Field:   hl.Field,
				Snippet: hl.Snippet,
			})
		}
		results.Hits = append(results.Hits, hit)
	}
	return results, nil
}

func (c *Client) documentsPath() string {
	return "/collections/" + url.PathEscape(c.cfg.Collection) + "/documents"
}

// call performs one JSON request. Network failures and non-success responses
// map to domain.ErrBackendUnavailable; a 404 maps to domain.ErrNotFound.
func (c *Client) call(
	ctx context.Context, method, path string, query url.Values, in, out any,
) error {
	if !c.Configured() {
		return domain.ErrNotConfigured
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-TYPESENSE-API-KEY", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, path, err, domain.ErrBackendUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound)
	}
	if resp.StatusCode >= 300 {
		return c.statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %v: %w", err, domain.ErrBackendUnavailable)
		}
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	c.logger.Warn("typesense error response",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", snippet),
	)
	return fmt.Errorf("unexpected HTTP %d: %w", resp.StatusCode, domain.ErrBackendUnavailable)
}
