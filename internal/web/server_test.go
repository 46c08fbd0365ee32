package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/usecase"
	"github.com/vitos/trade_journal/internal/web"
)

// journalFixture wires a full server over in-memory repositories with
// one admin and one regular account pre-created.
type journalFixture struct {
	store      *memStore
	server     *web.Server
	adminToken string
	userToken  string
	admin      *domain.User
	user       *domain.User
}

func newFixture(t *testing.T) *journalFixture {
	t.Helper()
	log := zap.NewNop()
	store := &memStore{}

	accounts := usecase.NewUserService(store, log)
	backup := usecase.NewBackupService(store, store, log)
	analyzer := &mockAnalyzer{}

	server := web.NewServer(0, web.Deps{
		Trades:     store,
		Users:      store,
		Options:    store,
		Metrics:    usecase.NewMetricsEngine(),
		Entries:    usecase.NewTradeService(store, log),
		Accounts:   accounts,
		Backup:     backup,
		GistSync:   usecase.NewGistSyncService(backup, &mockGistStore{}, log),
		Coach:      usecase.NewCoachService(analyzer, time.Second, log),
		AuthSecret: "test-secret",
		SessionTTL: time.Hour,
		Logger:     log,
	})

	ctx := context.Background()
	admin, err := accounts.CreateUser(ctx, "root", "rootpass", domain.RoleAdmin)
	require.NoError(t, err)
	user, err := accounts.CreateUser(ctx, "alice", "alicepass", domain.RoleUser)
	require.NoError(t, err)

	f := &journalFixture{store: store, server: server, admin: admin, user: user}
	f.adminToken = f.login(t, "root", "rootpass")
	f.userToken = f.login(t, "alice", "alicepass")
	return f
}

func (f *journalFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (f *journalFixture) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/trades", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/trades", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNavSurfaceByRole(t *testing.T) {
	f := newFixture(t)

	var nav struct {
		Items []string `json:"items"`
	}
	rec := f.do(t, http.MethodGet, "/api/nav", f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nav))
	assert.Contains(t, nav.Items, "add-trade")
	assert.NotContains(t, nav.Items, "user-management")

	rec = f.do(t, http.MethodGet, "/api/nav", f.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nav))
	assert.Contains(t, nav.Items, "user-management")
	assert.NotContains(t, nav.Items, "add-trade")
}

func (f *journalFixture) submitTrade(t *testing.T, token string, draft map[string]any) map[string]any {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/trades", token, draft)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var trade map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trade))
	return trade
}

func TestTradeScopePartition(t *testing.T) {
	f := newFixture(t)

	// Seed trades for both accounts directly.
	f.store.Trades = []*domain.Trade{
		{ID: "t1", UserID: f.user.ID},
		{ID: "t2", UserID: f.admin.ID},
		{ID: "t3", UserID: f.user.ID},
	}

	var trades []*domain.Trade
	rec := f.do(t, http.MethodGet, "/api/trades", f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trades))
	assert.Len(t, trades, 2)
	for _, tr := range trades {
		assert.Equal(t, f.user.ID, tr.UserID)
	}

	rec = f.do(t, http.MethodGet, "/api/trades", f.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trades))
	assert.Len(t, trades, 3)
}

func TestSubmitStampsOwner(t *testing.T) {
	f := newFixture(t)

	trade := f.submitTrade(t, f.userToken, map[string]any{
		"symbol":     "BTCUSDT",
		"direction":  "LONG",
		"entryPrice": "100",
		"exitPrice":  "110",
		"size":       "1",
	})
	assert.Equal(t, f.user.ID, trade["userId"])
	assert.InDelta(t, 10.0, trade["pnlAmount"].(float64), 1e-9)
}

func TestEditForeignTradeForbidden(t *testing.T) {
	f := newFixture(t)
	f.store.Trades = []*domain.Trade{{ID: "t1", UserID: f.admin.ID}}

	rec := f.do(t, http.MethodPut, "/api/trades/t1", f.userToken, map[string]any{"symbol": "X"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/trades/t1", f.userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.submitTrade(t, f.userToken, map[string]any{
		"direction": "LONG", "entryPrice": "100", "exitPrice": "110", "size": "1",
	})
	f.submitTrade(t, f.userToken, map[string]any{
		"direction": "LONG", "entryPrice": "100", "exitPrice": "95", "size": "1",
	})

	rec := f.do(t, http.MethodGet, "/api/stats", f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Count)
	assert.InDelta(t, 50.0, stats.WinRate, 1e-9)
	assert.InDelta(t, 5.0, stats.TotalPnl, 1e-9)
}

func TestHourlyAlways24(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/hourly", f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var buckets []domain.HourBucket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buckets))
	assert.Len(t, buckets, 24)
}

func TestUserManagementAdminOnly(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/users", f.userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/users", f.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSelfDeleteRefusedOverHTTP(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodDelete, "/api/users/"+f.admin.ID, f.adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, f.store.Users, 2, "user list must be unchanged")

	rec = f.do(t, http.MethodDelete, "/api/users/"+f.user.ID, f.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.store.Users, 1)
}

func TestImportRequiresConfirmation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/backup/import", f.userToken, map[string]any{"trades": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "confirm_required")

	rec = f.do(t, http.MethodPost, "/api/backup/import?confirm=true", f.userToken, map[string]any{"trades": []any{}})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImportRejectsMissingTrades(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/backup/import?confirm=true", f.userToken, map[string]any{"setups": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad_backup")
}

func TestCoachKeyMissingIsDistinct(t *testing.T) {
	f := newFixture(t)
	f.store.Trades = []*domain.Trade{{ID: "t1", UserID: f.user.ID}}

	rec := f.do(t, http.MethodGet, "/api/coach/status", f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":false`)

	rec = f.do(t, http.MethodPost, "/api/coach", f.userToken, nil)
	assert.Equal(t, http.StatusFailedDependency, rec.Code)
	assert.Contains(t, rec.Body.String(), "ai_key_missing")
}

func TestDisabledAccountLockedOut(t *testing.T) {
	f := newFixture(t)

	off := false
	rec := f.do(t, http.MethodPut, "/api/users/"+f.user.ID, f.adminToken, map[string]any{"isActive": off})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The old token no longer grants access.
	rec = f.do(t, http.MethodGet, "/api/trades", f.userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// And a fresh login is refused too.
	rec = f.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice", "password": "alicepass",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMonthWindowFilter(t *testing.T) {
	f := newFixture(t)
	march := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	april := time.Date(2025, 4, 2, 9, 0, 0, 0, time.Local)
	f.store.Trades = []*domain.Trade{
		{ID: "t1", UserID: f.user.ID, EntryTime: march, ExitTime: march.Add(time.Hour), PnlAmount: 10},
		{ID: "t2", UserID: f.user.ID, EntryTime: april, ExitTime: april.Add(time.Hour), PnlAmount: -5},
	}

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/stats?year=%d&month=%d", 2025, 3), f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Count)
	assert.InDelta(t, 10.0, stats.TotalPnl, 1e-9)
}
