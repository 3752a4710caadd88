package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"stackit/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerWithDeps_RequiresConfigAndDB(t *testing.T) {
	_, err := NewServerWithDeps(nil, nil, nil)
	assert.Error(t, err)

	_, err = NewServerWithDeps(&config.Config{}, nil, nil)
	assert.Error(t, err)
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/health/ready", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}](t, resp)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["redis"])

	env.mr.Close()
	resp = env.do(http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStartBackgroundAndShutdown(t *testing.T) {
	for _, flags := range []string{"", "promotion_job=off"} {
		t.Run("flags="+flags, func(t *testing.T) {
			env := newTestEnv(t, flags)
			require.NoError(t, env.s.StartBackground())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, env.s.Shutdown(ctx))
		})
	}
}
