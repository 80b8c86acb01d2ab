package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/internal/domain"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

func newRecordingServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, recordedRequest{Method: r.Method, Path: r.URL.EscapedPath(), Body: string(body)})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), seen...)
	}
}

func newClient(t *testing.T, baseURL string) *HTTP {
	t.Helper()
	c, err := NewHTTP(HTTPOptions{BaseURL: baseURL, Timeout: time.Second})
	require.NoError(t, err)
	return c
}

func TestHTTPListDecodesRecords(t *testing.T) {
	srv, seen := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1","name":"A"},{"id":2}]`))
	})
	c := newClient(t, srv.URL+"/")

	records, err := c.List(context.Background(), domain.CollectionDonors)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"id":"1","name":"A"}`, string(records[0]))
	assert.Equal(t, []recordedRequest{{Method: http.MethodGet, Path: "/donors"}}, seen())
}

func TestHTTPWritesUseCollectionPaths(t *testing.T) {
	srv, seen := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c := newClient(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, c.Create(ctx, domain.CollectionRequests, json.RawMessage(`{"id":"r1"}`)))
	require.NoError(t, c.Update(ctx, domain.CollectionRequests, "r1", json.RawMessage(`{"units":3}`)))
	require.NoError(t, c.Delete(ctx, domain.CollectionRequests, "r 1"))

	assert.Equal(t, []recordedRequest{
		{Method: http.MethodPost, Path: "/requests", Body: `{"id":"r1"}`},
		{Method: http.MethodPatch, Path: "/requests/r1", Body: `{"units":3}`},
		{Method: http.MethodDelete, Path: "/requests/r%201"},
	}, seen())
}

func TestHTTPMissingRecordIsNotAFailure(t *testing.T) {
	srv, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	c := newClient(t, srv.URL)

	assert.NoError(t, c.Delete(context.Background(), domain.CollectionDonors, "gone"))
	_, err := c.List(context.Background(), domain.CollectionDonors)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestHTTPServerErrorIsUnavailable(t *testing.T) {
	srv, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := newClient(t, srv.URL)
	ctx := context.Background()

	assert.ErrorIs(t, c.Probe(ctx), domain.ErrBackendUnavailable)
	assert.ErrorIs(t, c.Create(ctx, domain.CollectionDonors, json.RawMessage(`{}`)), domain.ErrBackendUnavailable)
}

func TestHTTPMalformedBodyIsUnavailable(t *testing.T) {
	srv, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	c := newClient(t, srv.URL)

	_, err := c.List(context.Background(), domain.CollectionAdmins)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestHTTPProbe(t *testing.T) {
	srv, seen := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := newClient(t, srv.URL)
	assert.NoError(t, c.Probe(context.Background()), "a responding server is reachable")
	assert.Equal(t, http.MethodHead, seen()[0].Method)

	srv.Close()
	assert.ErrorIs(t, c.Probe(context.Background()), domain.ErrBackendUnavailable)
}

func TestNewHTTPRejectsBadScheme(t *testing.T) {
	_, err := NewHTTP(HTTPOptions{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}
