package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "leadcapture_backend/internal/http"
	"leadcapture_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type routerConfig struct{}

func (routerConfig) GetHTTPAddr() string        { return ":0" }
func (routerConfig) GetCORSAllowAll() bool      { return false }
func (routerConfig) GetCORSOrigins() []string   { return []string{"https://forms.example.com"} }
func (routerConfig) GetCORSAllowCreds() bool    { return true }
func (routerConfig) GetJWTAccessSecret() string { return "secret" }
func (routerConfig) GetRateLimitRPS() float64   { return 100 }
func (routerConfig) GetRateLimitBurst() int     { return 100 }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type probeModule struct{}

func (probeModule) Name() string { return "probe" }

func (probeModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/open", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	ctx.Protected.GET("/closed", func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

func newEngine(health apphttp.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config:  routerConfig{},
		Logger:  logger.Discard(),
		Health:  health,
		Modules: []apphttp.Module{probeModule{}},
	})
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthReportsDatabase(t *testing.T) {
	rec := serve(newEngine(pinger{}), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = serve(newEngine(pinger{err: errors.New("down")}), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestModuleGroups(t *testing.T) {
	engine := newEngine(pinger{})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/open", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/closed", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/open", nil)
	req.Header.Set("Origin", "https://forms.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := serve(newEngine(pinger{}), req)
	require.Equal(t, "https://forms.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
