package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/chatrelay/configstore"
	"github.com/hrygo/chatrelay/historycache"
	"github.com/hrygo/chatrelay/internal/profile"
	"github.com/hrygo/chatrelay/jobs"
	"github.com/hrygo/chatrelay/lock"
	"github.com/hrygo/chatrelay/orchestrator"
	"github.com/hrygo/chatrelay/server"
	"github.com/hrygo/chatrelay/sharedstore/faketest"
	"github.com/hrygo/chatrelay/store"
)

type noopLauncher struct{}

func (noopLauncher) Launch(string) {}

func newTestServer(t *testing.T, p *profile.Profile) (*server.Server, *store.Store) {
	t.Helper()
	driver := newMemDriver()
	db := store.New(driver)
	cfg := configstore.New(db)
	shared := faketest.New()
	locks := lock.NewManager(lock.NewMemoryBackend(), lock.NewMemoryBackend(), nil)
	registry := jobs.NewRegistry(shared)
	hc := historycache.New(shared)
	handler := orchestrator.New(db, cfg, locks, registry, hc, noopLauncher{})
	return server.New(p, db, handler, nil), db
}

func TestChatMessageAccepted(t *testing.T) {
	srv, _ := newTestServer(t, &profile.Profile{})
	httpSrv := httptest.NewServer(srv)
	defer httpSrv.Close()

	body, _ := json.Marshal(map[string]any{
		"conversation_id": "c1",
		"history":         "<USER>hi</USER><br>",
	})
	resp, err := http.Post(httpSrv.URL+"/api/v1/chat/message", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.True(t, parsed["success"].(bool))
	assert.Equal(t, "ai_processing_started", parsed["status"])
	assert.NotEmpty(t, parsed["ai_job_id"])
}

func TestChatMessageRequiresPlatformTokenWhenConfigured(t *testing.T) {
	srv, _ := newTestServer(t, &profile.Profile{PlatformAccessToken: "secret"})
	httpSrv := httptest.NewServer(srv)
	defer httpSrv.Close()

	resp, err := http.Post(httpSrv.URL+"/api/v1/chat/message", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminCoreAICRUD(t *testing.T) {
	srv, _ := newTestServer(t, &profile.Profile{})
	httpSrv := httptest.NewServer(srv)
	defer httpSrv.Close()

	createBody, _ := json.Marshal(map[string]any{
		"name":         "gpt",
		"api_endpoint": "http://ai.example.com/{session_id}",
		"is_active":    true,
	})
	resp, err := http.Post(httpSrv.URL+"/api/v1/admin/core-ai", "application/json", bytes.NewReader(createBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created store.CoreAI
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 30, created.TimeoutSeconds)

	getResp, err := http.Get(httpSrv.URL + "/api/v1/admin/core-ai/" + created.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
}

func TestAdminBotRequiresActiveCoreAIAndPlatform(t *testing.T) {
	srv, db := newTestServer(t, &profile.Profile{})
	httpSrv := httptest.NewServer(srv)
	defer httpSrv.Close()

	inactiveAI, err := db.CreateCoreAI(t.Context(), &store.CoreAI{Name: "inactive-ai", APIEndpoint: "http://x", IsActive: false})
	require.NoError(t, err)
	platform, err := db.CreatePlatform(t.Context(), &store.Platform{Name: "p", BaseURL: "http://x", IsActive: true})
	require.NoError(t, err)

	createBody, _ := json.Marshal(map[string]any{
		"name":         "bot1",
		"core_ai_id":   inactiveAI.ID,
		"platform_id":  platform.ID,
	})
	resp, err := http.Post(httpSrv.URL+"/api/v1/admin/bot", "application/json", bytes.NewReader(createBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminRoutesRequireTokenWhenConfigured(t *testing.T) {
	srv, _ := newTestServer(t, &profile.Profile{AdminAccessToken: "admin-secret"})
	httpSrv := httptest.NewServer(srv)
	defer httpSrv.Close()

	resp, err := http.Get(httpSrv.URL + "/api/v1/admin/core-ai")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, httpSrv.URL+"/api/v1/admin/core-ai", nil)
	req.Header.Set("Authorization", "Bearer admin-secret")
	authed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer authed.Body.Close()
	assert.Equal(t, http.StatusOK, authed.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &profile.Profile{})
	httpSrv := httptest.NewServer(srv)
	defer httpSrv.Close()

	resp, err := http.Get(httpSrv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
