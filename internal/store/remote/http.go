// Package remote implements the network collection backends behind the
// persistence façade.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
)

// DefaultBaseURL is where a local json-server usually listens.
const DefaultBaseURL = "http://localhost:3000"

const maxErrorBody = 512

// HTTPOptions configures the REST collection client.
type HTTPOptions struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// HTTP talks to a json-server style service: one resource path per collection,
// records addressed by /{collection}/{id}.
type HTTP struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTP constructs the client with defaults for the zero-valued options.
func NewHTTP(opts HTTPOptions) (*HTTP, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("remote: unsupported scheme %q", base.Scheme)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTP{baseURL: base, httpClient: httpClient, logger: opts.Logger}, nil
}

// Probe issues a HEAD against the donors resource. Only transport failures
// and server errors count as unreachable.
func (c *HTTP) Probe(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodHead, c.endpoint(domain.CollectionDonors, ""), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return unavailable("probe", fmt.Errorf("status %d", resp.StatusCode))
	}
	return nil
}

func (c *HTTP) List(ctx context.Context, coll domain.Collection) ([]json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpoint(coll, ""), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, unavailable("list "+coll.String(), err)
	}
	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, unavailable("list "+coll.String(), fmt.Errorf("decode body: %w", err))
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

func (c *HTTP) Create(ctx context.Context, coll domain.Collection, record json.RawMessage) error {
	return c.send(ctx, http.MethodPost, coll, "", record)
}

// Update sends a PATCH so the service merges the partial record.
func (c *HTTP) Update(ctx context.Context, coll domain.Collection, id string, patch json.RawMessage) error {
	return c.send(ctx, http.MethodPatch, coll, id, patch)
}

func (c *HTTP) Delete(ctx context.Context, coll domain.Collection, id string) error {
	return c.send(ctx, http.MethodDelete, coll, id, nil)
}

func (c *HTTP) send(ctx context.Context, method string, coll domain.Collection, id string, body json.RawMessage) error {
	op := strings.ToLower(method) + " " + coll.String()
	resp, err := c.do(ctx, method, c.endpoint(coll, id), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// A record that is already gone leaves nothing to update or delete.
	if id != "" && resp.StatusCode == http.StatusNotFound {
		c.logger.Debug().Str("collection", coll.String()).Str("id", id).Msg("remote: record not found")
		return nil
	}
	if err := checkStatus(resp); err != nil {
		return unavailable(op, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *HTTP) do(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable(strings.ToLower(method)+" "+endpoint, err)
	}
	c.logger.Debug().
		Str("method", method).
		Str("url", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("remote: request")
	return resp, nil
}

func (c *HTTP) endpoint(coll domain.Collection, id string) string {
	if id == "" {
		return c.baseURL.JoinPath(coll.String()).String()
	}
	return c.baseURL.JoinPath(coll.String(), id).String()
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, msg)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrBackendUnavailable, op, err)
}
