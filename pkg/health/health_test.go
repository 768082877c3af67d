package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) statusResponse {
	t.Helper()
	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestReadyEndpoint_NotReadyByDefault(t *testing.T) {
	s := New()

	rec := httptest.NewRecorder()
	s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeStatus(t, rec)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Checks, "_readiness")
}

func TestReadyEndpoint_AfterSetReady(t *testing.T) {
	s := New()
	s.SetReady(true)

	rec := httptest.NewRecorder()
	s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeStatus(t, rec).Status)
	assert.True(t, s.IsReady())
}

func TestLiveEndpoint_HealthyByDefault(t *testing.T) {
	s := New()
	s.AddLivenessCheck("always-ok", time.Second, func(context.Context) error {
		return nil
	})

	rec := httptest.NewRecorder()
	s.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProbe_FailureThreshold(t *testing.T) {
	p := newProbe("failing", time.Second, func(context.Context) error {
		return errors.New("down")
	})

	ctx := context.Background()

	// Stays healthy until the failure threshold is reached.
	p.run(ctx)
	p.run(ctx)
	assert.True(t, p.healthy.Load())

	p.run(ctx)
	assert.False(t, p.healthy.Load())

	msg, failed := p.failure()
	assert.True(t, failed)
	assert.Equal(t, "down", msg)
}

func TestProbe_RecoversAfterSuccess(t *testing.T) {
	down := true
	p := newProbe("flaky", time.Second, func(context.Context) error {
		if down {
			return errors.New("down")
		}
		return nil
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		p.run(ctx)
	}
	require.False(t, p.healthy.Load())

	down = false
	p.run(ctx)
	assert.True(t, p.healthy.Load())
}

func TestIsReady_FailingReadinessCheck(t *testing.T) {
	s := New()
	s.SetReady(true)
	s.AddReadinessCheck("db", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})
	defer s.Stop()

	// Drive the probe past its failure threshold.
	s.mu.RLock()
	p := s.readiness[0]
	s.mu.RUnlock()
	for i := 0; i < 3; i++ {
		p.run(context.Background())
	}

	assert.False(t, s.IsReady())

	rec := httptest.NewRecorder()
	s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, decodeStatus(t, rec).Checks, "db")
}

func TestFileCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	assert.NoError(t, FileCheck(path)(context.Background()))
	assert.Error(t, FileCheck(filepath.Join(dir, "missing.json"))(context.Background()))
	assert.Error(t, FileCheck(dir)(context.Background()))
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
