package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kv-shepherd.io/multiauth/internal/config"
	"kv-shepherd.io/multiauth/internal/guard"
	"kv-shepherd.io/multiauth/plugins/userprovider/envlist"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestBuildCORSConfig_DefaultsToAllowlistWhenOriginsEmpty(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			AllowedOrigins:        nil,
			AllowCredentials:      true,
			UnsafeAllowAllOrigins: false,
		},
	}

	got := buildCORSConfig(cfg)
	assert.False(t, got.AllowAllOrigins)
	assert.True(t, got.AllowCredentials)
	assert.Equal(t, defaultAllowedOrigins, got.AllowOrigins)
}

func TestBuildCORSConfig_StripsWildcardUnlessUnsafeFlagEnabled(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			AllowedOrigins:   []string{"*", "https://example.com"},
			AllowCredentials: true,
		},
	}

	got := buildCORSConfig(cfg)
	assert.False(t, got.AllowAllOrigins)
	assert.Equal(t, []string{"https://example.com"}, got.AllowOrigins)
}

func TestBuildCORSConfig_UnsafeAllowAllDisablesCredentials(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			AllowedOrigins:        []string{"*"},
			AllowCredentials:      true,
			UnsafeAllowAllOrigins: true,
		},
	}

	got := buildCORSConfig(cfg)
	assert.True(t, got.AllowAllOrigins)
	assert.False(t, got.AllowCredentials)
	assert.Empty(t, got.AllowOrigins)
}

func testConfig(enforce bool) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{AllowCredentials: true},
		Auth: config.AuthConfig{
			Defaults: config.AuthDefaults{Guard: "api"},
			Guards: map[string]guard.GuardConfig{
				"api": {Driver: "passport", Provider: "users"},
			},
			Providers: map[string]guard.ProviderConfig{
				"users":  {Driver: "static", Users: []guard.StaticUser{{ID: "7", Username: "bob"}}},
				"admins": {Driver: envlist.Type},
			},
		},
		Selector: config.SelectorConfig{Guard: "api", EnforceValidation: enforce},
	}
}

func TestBootstrap_WithoutDatabase(t *testing.T) {
	application, err := Bootstrap(context.Background(), testConfig(true))
	require.NoError(t, err)
	defer application.Shutdown()

	assert.Nil(t, application.Pool)
	assert.NotNil(t, application.Router)
	assert.NotNil(t, application.Resolver)
}

func TestRouter_SelectsProviderEndToEnd(t *testing.T) {
	t.Setenv(envlist.VarName("admins"), "alice, carol")

	application, err := Bootstrap(context.Background(), testConfig(true))
	require.NoError(t, err)
	defer application.Shutdown()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/provider",
		strings.NewReader(`{"username":"carol","provider":"admins"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	application.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "admins", body["provider"])
	assert.Equal(t, envlist.Type, body["driver"])
	assert.Equal(t, true, body["selected"])
}

func TestRouter_StrictRejectsFormWithoutProvider(t *testing.T) {
	application, err := Bootstrap(context.Background(), testConfig(true))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/provider", strings.NewReader("username=bob"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	application.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "The provider field is required.")
	assert.NotContains(t, w.Body.String(), "The username field is required.")
}

func TestRouter_LenientUsesConfiguredProvider(t *testing.T) {
	application, err := Bootstrap(context.Background(), testConfig(false))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/provider?username=bob", nil)
	w := httptest.NewRecorder()
	application.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"provider":"users"`)
	assert.Contains(t, w.Body.String(), `"id":"7"`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	application, err := Bootstrap(context.Background(), testConfig(true))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/provider", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	application.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_ReadinessReportsProviderHealth(t *testing.T) {
	application, err := Bootstrap(context.Background(), testConfig(true))
	require.NoError(t, err)
	defer application.Shutdown()
	require.NoError(t, application.Start(context.Background()))

	w := httptest.NewRecorder()
	application.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))

	// admins has no MULTIAUTH_PROVIDER_ADMINS_USERS set.
	require.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"BROKEN"`)

	t.Setenv(envlist.VarName("admins"), "alice")
	application.Health.CheckAll(context.Background())

	w = httptest.NewRecorder()
	application.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestApplication_Shutdown_Nil(t *testing.T) {
	app := &Application{}
	assert.NotPanics(t, app.Shutdown)
}
