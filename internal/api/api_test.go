package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconfig "github.com/Mod5ied/eagle-server/infrastructure/config"
	infrahealth "github.com/Mod5ied/eagle-server/infrastructure/health"
	"github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/infrastructure/metrics"
	"github.com/Mod5ied/eagle-server/internal/api"
	"github.com/Mod5ied/eagle-server/internal/auth"
	"github.com/Mod5ied/eagle-server/internal/config"
	internalhealth "github.com/Mod5ied/eagle-server/internal/health"
	"github.com/Mod5ied/eagle-server/internal/repository"
	"github.com/Mod5ied/eagle-server/internal/store"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "password123"
	frontend     = "http://localhost:5173"
)

type quietSampler struct{}

func (quietSampler) Sample(context.Context) (infrahealth.ResourceSample, error) {
	return infrahealth.ResourceSample{
		Memory: infrahealth.MemoryStats{Total: 1000, Used: 400, Free: 600, UsagePercent: 40},
		CPU:    infrahealth.CPUStats{Count: 2, UsagePercent: 10},
	}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *metrics.Metrics) {
	t.Helper()

	cfg := &config.Config{
		Environment: config.EnvTest,
		Server:      infraconfig.ServerConfig{Port: 4000},
		CORS:        config.CORSConfig{FrontendOrigins: []string{frontend}},
	}
	log := logger.NewNop()
	coll := store.NewMemoryStore().Collection("products")
	m := metrics.New()

	checker := infrahealth.NewChecker(log, []infrahealth.Probe{
		infrahealth.NewSystemProbe(quietSampler{}, 90, 90),
		internalhealth.NewStoreProbe(coll, "memory"),
	}, infrahealth.WithRecorder(m))

	srv := api.NewServer(api.Dependencies{
		Config:      cfg,
		Logger:      log,
		Products:    repository.NewProductRepository(coll, log),
		Tokens:      auth.NewTokenService("test-secret-key-32-chars-minimum", time.Hour),
		Credentials: auth.NewCredentialValidator(demoEmail, demoPassword),
		Health:      checker,
		Metrics:     m,
		Version:     "test",
	})
	return srv.Router(), m
}

func do(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router http.Handler) *http.Cookie {
	t.Helper()

	w := do(router, http.MethodPost, "/api/auth/login", `{"email":"`+demoEmail+`","password":"`+demoPassword+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

const widgetJSON = `{"name":"Widget","sku":"W1","price":9.99,"quantity":5,"category":"tools"}`

func TestEndToEnd_LoginListCreateDuplicate(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	session := login(t, router)

	w := do(router, http.MethodGet, "/api/products", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())

	w = do(router, http.MethodPost, "/api/products", widgetJSON, session)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode(t, w)["product"].(map[string]any)
	assert.Equal(t, "active", product["status"])
	assert.Equal(t, "W1", product["sku"])
	assert.NotEmpty(t, product["id"])
	assert.NotEmpty(t, product["createdAt"])

	w = do(router, http.MethodPost, "/api/products", widgetJSON, session)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"SKU already exists"}`, w.Body.String())

	w = do(router, http.MethodGet, "/api/products", "", session)
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, product["id"], items[0].(map[string]any)["id"])
}

func TestLogin(t *testing.T) {
	t.Parallel()
	router, m := newTestRouter(t)

	t.Run("valid credentials", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/auth/login", `{"email":"`+demoEmail+`","password":"`+demoPassword+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":{"id":"demo-user-1","email":"demo@example.com"}}`, w.Body.String())

		setCookie := w.Header().Get("Set-Cookie")
		assert.Contains(t, setCookie, "token=")
		assert.Contains(t, setCookie, "HttpOnly")
		assert.Contains(t, setCookie, "SameSite=Strict")
		assert.Contains(t, setCookie, "Max-Age=3600")
		assert.Contains(t, setCookie, "Path=/")
		assert.NotContains(t, setCookie, "Secure")
	})

	t.Run("invalid credentials", func(t *testing.T) {
		for _, body := range []string{
			`{"email":"demo@example.com","password":"wrong-password"}`,
			`{"email":"other@example.com","password":"password123"}`,
		} {
			w := do(router, http.MethodPost, "/api/auth/login", body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"message":"Invalid credentials"}`, w.Body.String())
			assert.Empty(t, w.Header().Get("Set-Cookie"))
		}
	})

	t.Run("schema violation", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/auth/login", `{"email":"nope"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		body := decode(t, w)
		assert.Equal(t, "Validation failed", body["message"])
		errs := body["errors"].(map[string]any)
		assert.Equal(t, []any{"must be a valid email address"}, errs["email"])
		assert.Equal(t, []any{"is required"}, errs["password"])
	})

	t.Run("login attempts are counted", func(t *testing.T) {
		families, err := m.Registry().Gather()
		require.NoError(t, err)

		var found bool
		for _, f := range families {
			if f.GetName() == "eagle_auth_login_attempts_total" {
				found = true
			}
		}
		assert.True(t, found)
	})
}

func TestMeAndLogout(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, w.Body.String())

	session := login(t, router)
	w = do(router, http.MethodGet, "/api/auth/me", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":{"id":"demo-user-1","email":"demo@example.com"}}`, w.Body.String())

	w = do(router, http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	setCookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, setCookie, "token=;")
	assert.Contains(t, setCookie, "Max-Age=0")
}

func TestProducts_RequireSession(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	forged := &http.Cookie{Name: auth.CookieName, Value: "forged.token.value"}
	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/products", ""},
		{http.MethodPost, "/api/products", widgetJSON},
		{http.MethodPatch, "/api/products/abc", `{"name":"New name"}`},
		{http.MethodPatch, "/api/products/abc/status", `{"status":"inactive"}`},
		{http.MethodDelete, "/api/products/abc", ""},
	} {
		w := do(router, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)

		w = do(router, tc.method, tc.path, tc.body, forged)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s with forged cookie", tc.method, tc.path)
	}
}

func TestProducts_Validation(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)
	session := login(t, router)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   map[string][]any
	}{
		{
			name:   "missing fields",
			method: http.MethodPost,
			path:   "/api/products",
			body:   `{"name":"W"}`,
			want: map[string][]any{
				"name":     {"must be at least 2 characters"},
				"sku":      {"is required"},
				"price":    {"is required"},
				"quantity": {"is required"},
				"category": {"is required"},
			},
		},
		{
			name:   "non-positive price and unknown status",
			method: http.MethodPost,
			path:   "/api/products",
			body:   `{"name":"Widget","sku":"W1","price":0,"quantity":5,"category":"tools","status":"archived"}`,
			want: map[string][]any{
				"price":  {"must be greater than 0"},
				"status": {"must be one of: active, inactive"},
			},
		},
		{
			name:   "negative quantity",
			method: http.MethodPost,
			path:   "/api/products",
			body:   `{"name":"Widget","sku":"W1","price":1,"quantity":-1,"category":"tools"}`,
			want:   map[string][]any{"quantity": {"must be at least 0"}},
		},
		{
			name:   "fractional quantity",
			method: http.MethodPost,
			path:   "/api/products",
			body:   `{"name":"Widget","sku":"W1","price":1,"quantity":2.5,"category":"tools"}`,
			want:   map[string][]any{"quantity": {"must be an integer"}},
		},
		{
			name:   "short name on update",
			method: http.MethodPatch,
			path:   "/api/products/abc",
			body:   `{"name":"x"}`,
			want:   map[string][]any{"name": {"must be at least 2 characters"}},
		},
		{
			name:   "missing status",
			method: http.MethodPatch,
			path:   "/api/products/abc/status",
			body:   `{}`,
			want:   map[string][]any{"status": {"is required"}},
		},
		{
			name:   "malformed json",
			method: http.MethodPost,
			path:   "/api/products",
			body:   `{"name":`,
			want:   map[string][]any{"body": {"must be valid JSON"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.method, tt.path, tt.body, session)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			body := decode(t, w)
			assert.Equal(t, "Validation failed", body["message"])
			errs := body["errors"].(map[string]any)
			assert.Len(t, errs, len(tt.want))
			for field, msgs := range tt.want {
				assert.Equal(t, msgs, errs[field], "field %s", field)
			}
		})
	}
}

func TestProducts_UpdateStatusDelete(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)
	session := login(t, router)

	w := do(router, http.MethodPost, "/api/products", widgetJSON, session)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["product"].(map[string]any)["id"].(string)

	other := strings.Replace(widgetJSON, `"W1"`, `"W2"`, 1)
	w = do(router, http.MethodPost, "/api/products", other, session)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(router, http.MethodPatch, "/api/products/"+id, `{"price":12.5,"quantity":0}`, session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)["product"].(map[string]any)
	assert.InDelta(t, 12.5, updated["price"], 1e-9)
	assert.InDelta(t, 0, updated["quantity"], 0)
	assert.Equal(t, "Widget", updated["name"])

	w = do(router, http.MethodPatch, "/api/products/"+id, `{"sku":"W2"}`, session)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, http.MethodPatch, "/api/products/"+id+"/status", `{"status":"inactive"}`, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "inactive", decode(t, w)["product"].(map[string]any)["status"])

	w = do(router, http.MethodPatch, "/api/products/missing", `{"name":"Renamed"}`, session)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Not found"}`, w.Body.String())

	w = do(router, http.MethodPatch, "/api/products/missing/status", `{"status":"active"}`, session)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodDelete, "/api/products/"+id, "", session)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(router, http.MethodDelete, "/api/products/"+id, "", session)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Healthy", body["status"])
	checks := body["checks"].(map[string]any)
	require.Contains(t, checks, "system")
	require.Contains(t, checks, "store")

	storeCheck := checks["store"].(map[string]any)
	assert.Equal(t, "Memory Connectivity", storeCheck["displayName"])
	assert.Contains(t, storeCheck, "responseTime")

	w = do(router, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "eagle_health_probe_status")
}

func TestRouterPlumbing(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	t.Run("unknown route", func(t *testing.T) {
		w := do(router, http.MethodGet, "/nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"Not Found"}`, w.Body.String())
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/products", http.NoBody)
		req.Header.Set("Origin", frontend)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, frontend, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin gets no cors headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("oversized body", func(t *testing.T) {
		big := `{"email":"` + strings.Repeat("a", 200<<10) + `","password":"x"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(big))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
