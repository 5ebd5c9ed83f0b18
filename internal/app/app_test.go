package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsecli/internal/infrastructure"
)

// setupTestEnvironment points the application at a clean environment with
// hosting credentials set. The returned cleanup must run before the next
// application is constructed.
func setupTestEnvironment(t *testing.T) func() {
	t.Helper()

	infrastructure.ResetLoggerForTesting()

	envVars := map[string]string{
		"NSE_LOGGING_LEVEL":     "error",
		"NSE_RELAY_API_KEY":     "test-key",
		"NSE_RELAY_TEMPLATE_ID": "tpl-123",
	}
	for key, val := range envVars {
		os.Setenv(key, val)
	}

	return func() {
		for key := range envVars {
			os.Unsetenv(key)
		}
		infrastructure.ResetLoggerForTesting()
	}
}

func TestNewApplication(t *testing.T) {
	tests := []struct {
		name          string
		setupEnv      func()
		wantErr       bool
		errorContains string
	}{
		{
			name:    "successful initialization",
			wantErr: false,
		},
		{
			name: "invalid port rejected",
			setupEnv: func() {
				os.Setenv("NSE_SERVER_PORT", "-1")
			},
			wantErr:       true,
			errorContains: "config validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestEnvironment(t)
			defer cleanup()
			defer os.Unsetenv("NSE_SERVER_PORT")

			if tt.setupEnv != nil {
				tt.setupEnv()
			}

			app, err := NewApplication()

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, app)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, app.Config)
				assert.NotNil(t, app.Paths)
				assert.NotNil(t, app.Logger)
				assert.NotNil(t, app.Router)
				assert.NotNil(t, app.Server)
				assert.NotNil(t, app.Host)
				assert.NotNil(t, app.RelayService)
				assert.NotNil(t, app.HealthService)
				assert.NotNil(t, app.Metrics)
			}
		})
	}
}

// Missing hosting credentials must not prevent startup; the readiness
// endpoint reports the gap instead.
func TestNewApplicationWithoutCredentials(t *testing.T) {
	cleanup := setupTestEnvironment(t)
	defer cleanup()
	os.Unsetenv("NSE_RELAY_API_KEY")
	os.Unsetenv("NSE_RELAY_TEMPLATE_ID")

	app, err := NewApplication()
	require.NoError(t, err)

	testServer := httptest.NewServer(app.Router)
	defer testServer.Close()

	resp, err := http.Get(testServer.URL + "/api/health/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestApplicationRouterEndpoints(t *testing.T) {
	cleanup := setupTestEnvironment(t)
	defer cleanup()

	app, err := NewApplication()
	require.NoError(t, err)

	testServer := httptest.NewServer(app.Router)
	defer testServer.Close()

	t.Run("health endpoints respond", func(t *testing.T) {
		for _, path := range []string{"/api/health", "/api/health/ready", "/api/health/live", "/api/version"} {
			resp, err := http.Get(testServer.URL + path)
			require.NoError(t, err, path)
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode, path)
			assert.Contains(t, resp.Header.Get("Content-Type"), "application/json", path)
			assert.NotEmpty(t, body, path)
		}
	})

	t.Run("empty csv body rejected locally", func(t *testing.T) {
		resp, err := http.Post(testServer.URL+"/update-data", "text/csv", strings.NewReader(""))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var envelope map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		assert.Equal(t, false, envelope["success"])
	})

	t.Run("metrics exposition served", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "go_goroutines")
	})

	t.Run("unknown route yields problem details", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/definitely-not-here")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var problem map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
		assert.Equal(t, "/errors/not-found", problem["type"])
	})

	t.Run("method not allowed on relay route", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, testServer.URL+"/update-data", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("request id echoed with security headers", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, testServer.URL+"/api/health", nil)
		require.NoError(t, err)
		req.Header.Set("X-Request-ID", "app-test-trace")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "app-test-trace", resp.Header.Get("X-Request-ID"))
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	})

	t.Run("cors preflight short-circuits", func(t *testing.T) {
		origin := fmt.Sprintf("http://localhost:%d", app.Config.Server.Port)
		req, err := http.NewRequest(http.MethodOptions, testServer.URL+"/update-data", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, origin, resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestApplicationStartStop(t *testing.T) {
	cleanup := setupTestEnvironment(t)
	defer cleanup()

	os.Setenv("NSE_SERVER_PORT", "18643")
	defer os.Unsetenv("NSE_SERVER_PORT")

	app, err := NewApplication()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))

	// Wait for the listener to come up
	var resp *http.Response
	for i := 0; i < 20; i++ {
		resp, err = http.Get(fmt.Sprintf("http://localhost:%d/api/health/live", app.Config.Server.Port))
		if err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.NoError(t, app.Stop(context.Background()))
}

func TestGetCORSConfig(t *testing.T) {
	cleanup := setupTestEnvironment(t)
	defer cleanup()

	app, err := NewApplication()
	require.NoError(t, err)

	app.Config.Security.AllowedOrigins = []string{"https://sheets.example.com"}
	app.Config.Security.EnableCORS = true

	corsConfig := app.getCORSConfig()
	assert.Contains(t, corsConfig.AllowedOrigins, fmt.Sprintf("http://localhost:%d", app.Config.Server.Port))
	assert.Contains(t, corsConfig.AllowedOrigins, "https://sheets.example.com")
	assert.Contains(t, corsConfig.AllowedMethods, "POST")
	assert.True(t, corsConfig.AllowCredentials)
	assert.Equal(t, 300, corsConfig.MaxAge)
}

func TestCreateServer(t *testing.T) {
	cleanup := setupTestEnvironment(t)
	defer cleanup()

	app, err := NewApplication()
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf(":%d", app.Config.Server.Port), app.Server.Addr)
	assert.Equal(t, app.Router, app.Server.Handler)
	assert.Equal(t, app.Config.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.Equal(t, app.Config.Server.WriteTimeout, app.Server.WriteTimeout)
	assert.Equal(t, app.Config.Server.IdleTimeout, app.Server.IdleTimeout)
}

func TestPerformStartupHealthCheck(t *testing.T) {
	cleanup := setupTestEnvironment(t)
	defer cleanup()

	app, err := NewApplication()
	require.NoError(t, err)

	// Directories live next to the test binary; warnings are acceptable,
	// hard failures are not.
	err = app.performStartupHealthCheck(context.Background())
	if err != nil {
		assert.Contains(t, err.Error(), "warnings")
	}
}

func TestGenerateBuildID(t *testing.T) {
	id := generateBuildID()
	assert.Len(t, id, 12)
	assert.Equal(t, id, generateBuildID())
}
