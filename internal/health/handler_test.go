package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	err error
}

func (m *mockChecker) Ping(_ context.Context) error {
	return m.err
}

func TestHandler_Check(t *testing.T) {
	t.Run("returns ok when all dependencies are healthy", func(t *testing.T) {
		handler := health.NewHandler(map[string]health.Checker{
			"store": &mockChecker{},
			"redis": &mockChecker{},
		})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body.Status)
		assert.Equal(t, map[string]string{"store": "healthy", "redis": "healthy"}, resp.Body.Checks)
	})

	t.Run("returns degraded when a dependency is unhealthy", func(t *testing.T) {
		handler := health.NewHandler(map[string]health.Checker{
			"store": &mockChecker{},
			"redis": &mockChecker{err: errors.New("connection refused")},
		})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "degraded", resp.Body.Status)
		assert.Equal(t, "healthy", resp.Body.Checks["store"])
		assert.Equal(t, "unhealthy", resp.Body.Checks["redis"])
	})

	t.Run("returns ok with no dependencies", func(t *testing.T) {
		resp, err := health.NewHandler(nil).Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body.Status)
		assert.Empty(t, resp.Body.Checks)
	})
}

func TestRegisterRoutes(t *testing.T) {
	_, api := humatest.New(t)
	health.RegisterRoutes(api, health.NewHandler(map[string]health.Checker{"store": &mockChecker{}}))

	resp := api.Get("/health")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, map[string]string{"store": "healthy"}, body.Checks)
}

func TestRedisChecker(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	t.Run("Ping returns nil when redis is available", func(t *testing.T) {
		checker := health.NewRedisChecker(client)

		assert.NoError(t, checker.Ping(context.Background()))
	})
}
