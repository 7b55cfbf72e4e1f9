package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lesson-planner-api/internal/models"
	"github.com/noah-isme/lesson-planner-api/internal/service"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

type tokenStub struct{}

func (tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "valid" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: "u1"}, nil
}

func serve(r *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func whoAmI(c *gin.Context) {
	if claims, ok := Claims(c); ok {
		c.String(http.StatusOK, claims.UserID)
		return
	}
	c.String(http.StatusOK, "anonymous")
}

func TestJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", JWT(tokenStub{}), whoAmI)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/private", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/private", "Token valid").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/private", "Bearer nope").Code)

	w := serve(r, http.MethodGet, "/private", "bearer valid")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestOptionalJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/public", OptionalJWT(tokenStub{}), whoAmI)

	assert.Equal(t, "anonymous", serve(r, http.MethodGet, "/public", "Bearer nope").Body.String())
	assert.Equal(t, "u1", serve(r, http.MethodGet, "/public", "Bearer valid").Body.String())
}

type auditStub struct {
	logs []*models.AuditLog
	err  error
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return a.err
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &auditStub{}
	r := gin.New()
	r.POST("/ok", JWT(tokenStub{}), Audit(repo, nil, models.AuditActionAdvance, "timetables"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.POST("/fail", Audit(repo, nil, models.AuditActionAdvance, "timetables"), func(c *gin.Context) {
		c.Status(http.StatusConflict)
	})

	serve(r, http.MethodPost, "/ok", "Bearer valid")
	serve(r, http.MethodPost, "/fail", "")

	require.Len(t, repo.logs, 1)
	assert.Equal(t, models.AuditActionAdvance, repo.logs[0].Action)
	require.NotNil(t, repo.logs[0].UserID)
	assert.Equal(t, "u1", *repo.logs[0].UserID)
	assert.Contains(t, string(repo.logs[0].NewValues), `"path":"/ok"`)
}

type counterStub struct {
	count int64
	err   error
	keys  []string
}

func (s *counterStub) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return 0, s.err
	}
	s.count++
	return s.count, nil
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	counter := &counterStub{}
	metrics := service.NewMetricsService()
	r := gin.New()
	r.POST("/login", RateLimit(counter, metrics, nil, 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := serve(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := serve(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.Contains(t, counter.keys[0], "ratelimit:/login:")

	metricsOut := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(metricsOut, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metricsOut.Body.String(), `http_rate_limited_total{path="/login"} 1`)
}

func TestRateLimitFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	counter := &counterStub{err: errors.New("redis down")}
	r := gin.New()
	r.POST("/login", RateLimit(counter, nil, nil, 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/login", "").Code)
	}
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/semesters/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/semesters/abc", "")
	serve(r, http.MethodGet, "/missing", "")
	serve(r, http.MethodGet, "/metrics", "")

	out := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := out.Body.String()
	assert.Contains(t, body, `path="/semesters/:id"`)
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, `path="/metrics"`)
}

func TestResponseMetaAndCacheHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/cached", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/cached", "")

	assert.Equal(t, "HIT", w.Header().Get(CacheHeader))
	assert.Equal(t, true, meta[cacheHitKey])
}

func TestExtractMetaWithoutValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ExtractMeta(c))

	SetMeta(c, "persisted", false)
	SetCacheHit(c, false)
	meta := ExtractMeta(c)
	assert.Equal(t, false, meta["persisted"])
	assert.Equal(t, false, meta[cacheHitKey])
	assert.Contains(t, meta, elapsedKey)
	assert.Equal(t, "MISS", c.Writer.Header().Get(CacheHeader))
}
