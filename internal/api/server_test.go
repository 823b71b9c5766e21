package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festhub/festhub-api/internal/config"
	"github.com/festhub/festhub-api/internal/pkg/jwthelper"
)

func TestRateLimitScopedToParticipantWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Environment:        "test",
			JWTSigningKey:      "test-signing-key",
			AllowedCORSDomains: "*",
		},
		RateLimit: &config.RateLimit{Requests: 1, WindowSeconds: 60},
	}
	rdb, mockRedis := redismock.NewClientMock()
	srv := NewServer(conf, nil, rdb, nil)

	token, err := jwthelper.GenerateToken([]byte(conf.API.JWTSigningKey), 7, "test-agent")
	require.NoError(t, err)

	t.Run("throttles event registration", func(t *testing.T) {
		mockRedis.ExpectIncr("ratelimit:user:7").SetVal(2)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/events/1/register", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("User-Agent", "test-agent")
		rec := httptest.NewRecorder()
		srv.Router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NoError(t, mockRedis.ExpectationsWereMet())
	})

	t.Run("leaves read routes out of the rate limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		srv.Router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, mockRedis.ExpectationsWereMet())
	})
}
