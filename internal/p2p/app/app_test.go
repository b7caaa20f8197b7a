package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localCfg() *Cfg {
	return &Cfg{
		Name: "p2p-test",
		HTTP: HTTP{Rate: 1000, Burst: 1000},
		Session: Session{
			DefaultCity: "Pune",
			SeedDemoAds: true,
		},
		Feed: Feed{Enabled: true},
	}
}

func TestNew_InMemory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := New(ctx, localCfg())
	require.NoError(t, err)
	defer a.Close(context.Background())

	assert.Equal(t, 4, a.Directory.Len(), "演示广告")
	l, ok := a.Directory.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Pune Central", l.Location, "挂在默认城市下")
	assert.False(t, a.Session.Snapshot().Connected)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"健康检查", http.MethodGet, "/healthz", http.StatusOK},
		{"广告列表", http.MethodGet, "/api/ads?action=BUY&token=USDT", http.StatusOK},
		{"城市", http.MethodGet, "/api/cities?q=mum", http.StatusOK},
		{"没有钱包", http.MethodPost, "/api/wallet/connect", http.StatusPreconditionFailed},
		{"交易记录", http.MethodGet, "/api/trades", http.StatusOK},
		{"metrics 关闭", http.MethodGet, "/metrics", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			a.Engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestNew_NoSeed(t *testing.T) {
	cfg := localCfg()
	cfg.Session.SeedDemoAds = false
	cfg.Feed.Enabled = false

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close(context.Background())

	assert.Zero(t, a.Directory.Len())
	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/ads", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNew_BadWalletNetworks(t *testing.T) {
	cfg := localCfg()
	cfg.Wallet = Wallet{
		RPCURL:   "http://127.0.0.1:8545",
		Networks: map[string]string{"mainnet": "http://127.0.0.1:8545"},
	}
	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad chain id")
}

func TestBreakerRule(t *testing.T) {
	r := breakerRule(BreakerConfig{MaxRequests: 1, IntervalSeconds: 60, TimeoutSeconds: 30, ConsecutiveFailures: 3})
	assert.EqualValues(t, 1, r.MaxRequests)
	assert.Equal(t, "1m0s", r.Interval.String())
	assert.Equal(t, "30s", r.Timeout.String())
	assert.EqualValues(t, 3, r.TripConsecutiveFailures)
}

func TestNew_TradeJournalSurvivesRestart(t *testing.T) {
	cfg := localCfg()
	cfg.Trades.JournalPath = filepath.Join(t.TempDir(), "trades.wal")

	post := func(a *App, path, body string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		a.Engine.ServeHTTP(w, req)
		return w.Code
	}

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, post(a, "/api/ads/1/quote", `{"amount":"4000","record":true}`))
	a.Close(context.Background())

	a, err = New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close(context.Background())

	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/trades", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TXN00001")

	// 序号接着往下走
	require.Equal(t, http.StatusOK, post(a, "/api/ads/1/quote", `{"amount":"4000","record":true}`))
	w = httptest.NewRecorder()
	a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/trades?q=TXN00002", nil))
	assert.Contains(t, w.Body.String(), "TXN00002")
}

func TestWalletKey(t *testing.T) {
	ctx := context.Background()

	key, err := walletKey(ctx, Wallet{PrivateKey: "abc", Mnemonic: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "abc", key, "private_key 优先")

	key, err = walletKey(ctx, Wallet{})
	require.NoError(t, err)
	assert.Empty(t, key)

	key, err = walletKey(ctx, Wallet{Mnemonic: "test test test test test test test test test test test junk"})
	require.NoError(t, err)
	assert.Len(t, key, 64)

	_, err = walletKey(ctx, Wallet{Mnemonic: "not a mnemonic"})
	assert.Error(t, err)
}
