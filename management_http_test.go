package sectionprof

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	fiber "github.com/gofiber/fiber/v3"
	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/sectionprof/internal/constants"
	"github.com/hyp3rd/sectionprof/pkg/stats"
)

// TestManagementHTTP_Endpoints spins up the management HTTP server on an ephemeral port
// and validates the read-only endpoints.
func TestManagementHTTP_Endpoints(t *testing.T) {
	prof, manual := newManualProfiler()

	ctx, region := prof.Begin(context.Background(), "handler")
	_, inner := prof.Begin(ctx, "query")
	manual.Advance(5 * time.Millisecond)
	inner.End()
	region.End()

	srv := NewManagementHTTPServer("127.0.0.1:0")
	assert.NoError(t, srv.Start(context.Background(), prof))

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	addr := srv.Address()
	assert.True(t, addr != "")

	client := &http.Client{Timeout: 2 * time.Second}
	base := "http://" + addr

	// /health
	resp, err := client.Get(base + "/health")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// /report
	resp, err = client.Get(base + "/report")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	_ = resp.Body.Close()

	assert.True(t, strings.HasPrefix(string(body), constants.ReportHeader))
	assert.True(t, strings.Contains(string(body), "  query "))

	// /snapshot
	resp, err = client.Get(base + "/snapshot")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	etag := resp.Header.Get("ETag")
	assert.True(t, etag != "")

	var snap stats.Snapshot

	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	_ = resp.Body.Close()

	query, ok := snap.Find("handler", "query")
	assert.True(t, ok)
	assert.Equal(t, 5.0, query.Total)

	// conditional /snapshot
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, base+"/snapshot", nil)
	assert.NoError(t, err)
	req.Header.Set("If-None-Match", etag)

	resp, err = client.Do(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	_ = resp.Body.Close()

	// /snapshot?format=msgpack
	resp, err = client.Get(base + "/snapshot?format=msgpack")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/msgpack", resp.Header.Get("Content-Type"))
	_ = resp.Body.Close()

	// unknown format
	resp, err = client.Get(base + "/snapshot?format=xml")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestManagementHTTP_Auth(t *testing.T) {
	prof, _ := newManualProfiler()

	srv := NewManagementHTTPServer("127.0.0.1:0", WithMgmtAuth(func(fiberCtx fiber.Ctx) error {
		if fiberCtx.Get(fiber.HeaderAuthorization) != "Bearer token" {
			return fiber.ErrUnauthorized
		}

		return nil
	}))
	assert.NoError(t, srv.Start(context.Background(), prof))

	defer func() { _ = srv.Shutdown(context.Background()) }()

	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get("http://" + srv.Address() + "/report")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestManagementHTTP_StartRetryMountsRoutesOnce(t *testing.T) {
	prof, _ := newManualProfiler()

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)

	addr := busy.Addr().String()
	srv := NewManagementHTTPServer(addr)

	startErr := srv.Start(context.Background(), prof)
	assert.True(t, startErr != nil)
	assert.Equal(t, "", srv.Address())
	assert.NoError(t, busy.Close())

	assert.NoError(t, srv.Start(context.Background(), prof))

	defer func() { _ = srv.Shutdown(context.Background()) }()

	reportRoutes := 0

	for _, route := range srv.app.GetRoutes(true) {
		if route.Method == fiber.MethodGet && route.Path == "/report" {
			reportRoutes++
		}
	}

	assert.Equal(t, 1, reportRoutes)

	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get("http://" + srv.Address() + "/health")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}
