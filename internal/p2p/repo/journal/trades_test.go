package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p2pex.com/internal/p2p/domain"
)

func rec(id string) *domain.TradeRecord {
	return &domain.TradeRecord{
		ID:            id,
		ListingID:     "1",
		Action:        domain.DirectionBuy,
		Token:         domain.TokenUSDT,
		FiatAmount:    decimal.NewFromInt(4000),
		TokenQuantity: decimal.RequireFromString("45.945325"),
		UnitPrice:     decimal.RequireFromString("87.06"),
		Counterparty:  "Priya Sharma",
		Status:        domain.TradeStatusPending,
		CreatedAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestTrades_ReplayAcrossRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trades.wal")

	j, err := Open(path, false)
	require.NoError(t, err)
	require.NoError(t, j.Create(ctx, rec("TXN00001")))
	require.NoError(t, j.Create(ctx, rec("TXN00002")))
	require.NoError(t, j.UpdateStatus(ctx, "TXN00001", domain.TradeStatusInProgress))
	require.NoError(t, j.UpdateStatus(ctx, "TXN00001", domain.TradeStatusCompleted))
	require.NoError(t, j.UpdateStatus(ctx, "TXN-unknown", domain.TradeStatusCancelled))

	live, err := j.Load(ctx)
	require.NoError(t, err)
	require.Len(t, live, 2, "未关闭时也能读到")
	require.NoError(t, j.Close())

	j, err = Open(path, true)
	require.NoError(t, err)
	defer j.Close()

	got, err := j.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "TXN00001", got[0].ID)
	assert.Equal(t, domain.TradeStatusCompleted, got[0].Status)
	assert.Equal(t, domain.TradeStatusPending, got[1].Status)
	assert.True(t, got[0].TokenQuantity.Equal(decimal.RequireFromString("45.945325")))
	assert.True(t, got[0].CreatedAt.Equal(rec("x").CreatedAt))
}
