package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/internal/p2p/repo/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// :memory: 每个连接一个库，只留一个连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func listing(id string, dir domain.Direction, tok domain.Token, loc string, at time.Time) *domain.Listing {
	return &domain.Listing{
		ID:             id,
		Direction:      dir,
		Token:          tok,
		UnitPrice:      decimal.RequireFromString("87.06"),
		Available:      decimal.NewFromInt(1000),
		Limit:          domain.Limit{Min: decimal.NewFromInt(500), Max: decimal.NewFromInt(5000)},
		PaymentMethods: []string{"UPI Transfer", "Bank Transfer"},
		ListerName:     "CryptoKing",
		ListerRating:   4.8,
		ListerOnline:   true,
		Location:       loc,
		CreatedAt:      at,
	}
}

func TestListingRepo_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepo(db)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, listing("a", domain.DirectionSell, domain.TokenUSDT, "Mumbai Central", base)))
	require.NoError(t, repo.Create(ctx, listing("b", domain.DirectionBuy, domain.TokenUSDT, "Mumbai East", base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, listing("c", domain.DirectionSell, domain.TokenUSDC, "Delhi West", base.Add(2*time.Minute))))
	require.NoError(t, repo.Create(ctx, listing("d", domain.DirectionSell, domain.TokenUSDT, "Mumbai South", base.Add(3*time.Minute))))

	ids := func(ls []*domain.Listing) []string {
		out := make([]string, 0, len(ls))
		for _, l := range ls {
			out = append(out, l.ID)
		}
		return out
	}

	tests := []struct {
		name  string
		query domain.ListingQuery
		want  []string
	}{
		{"全部，新的在前", domain.ListingQuery{}, []string{"d", "c", "b", "a"}},
		{"按方向", domain.ListingQuery{Direction: domain.DirectionSell}, []string{"d", "c", "a"}},
		{"方向+币种", domain.ListingQuery{Direction: domain.DirectionSell, Token: domain.TokenUSDT}, []string{"d", "a"}},
		{"地点不区分大小写", domain.ListingQuery{Location: "mumbai"}, []string{"d", "b", "a"}},
		{"分页", domain.ListingQuery{Page: 2, Limit: 2}, []string{"b", "a"}},
		{"没有匹配", domain.ListingQuery{Location: "Chennai"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	got, err := repo.List(ctx, domain.ListingQuery{Token: domain.TokenUSDC})
	require.NoError(t, err)
	require.Len(t, got, 1)
	l := got[0]
	assert.Equal(t, domain.DirectionSell, l.Direction)
	assert.True(t, l.UnitPrice.Equal(decimal.RequireFromString("87.06")))
	assert.True(t, l.Limit.Max.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, []string{"UPI Transfer", "Bank Transfer"}, l.PaymentMethods)

	var row model.AdRow
	require.NoError(t, db.First(&row, "id = ?", "c").Error)
	assert.Equal(t, "sell", row.AdType, "库里存小写")
}

func TestListingRepo_Deactivate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Publish(ctx, listing("a", domain.DirectionSell, domain.TokenUSDT, "Pune", time.Now().UTC())))
	require.NoError(t, repo.Deactivate(ctx, "a"))

	got, err := repo.List(ctx, domain.ListingQuery{})
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, repo.Deactivate(ctx, "missing"), domain.ErrNotFound)
}

func TestCityRepo_Cities(t *testing.T) {
	db := setupTestDB(t)
	rows := []model.CityRow{
		{Name: "Pune", State: "Maharashtra", Country: "India", IsActive: true, TraderCount: 120},
		{Name: "Mumbai", State: "Maharashtra", Country: "India", IsActive: true, TraderCount: 980},
		{Name: "Agra", State: "Uttar Pradesh", Country: "India", IsActive: true, TraderCount: 120},
		{Name: "Goa", State: "Goa", Country: "India", IsActive: false, TraderCount: 999},
	}
	require.NoError(t, db.Create(&rows).Error)

	got, err := NewCityRepo(db).Cities(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Mumbai", "Agra", "Pune"}, names)
	assert.Equal(t, "Maharashtra", got[0].State)
	assert.Equal(t, 980, got[0].TraderCount)
}

func TestTradeRepo_CreateAndByAccount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTradeRepo(db)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	mk := func(id string, at time.Time) *domain.TradeRecord {
		return &domain.TradeRecord{
			ID:            id,
			ListingID:     "1",
			Action:        domain.DirectionBuy,
			Token:         domain.TokenUSDT,
			FiatAmount:    decimal.NewFromInt(4000),
			TokenQuantity: decimal.RequireFromString("45.945325"),
			UnitPrice:     decimal.RequireFromString("87.06"),
			PaymentMethod: "UPI Transfer",
			Counterparty:  "CryptoKing",
			Account:       "0xabc",
			Status:        domain.TradeStatusPending,
			CreatedAt:     at,
		}
	}
	require.NoError(t, repo.Create(ctx, mk("TXN00001", base)))
	require.NoError(t, repo.Create(ctx, mk("TXN00002", base.Add(time.Hour))))
	assert.Error(t, repo.Create(ctx, mk("TXN00001", base)), "主键冲突")

	got, err := repo.ByAccount(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "TXN00002", got[0].ID)
	assert.True(t, got[0].TokenQuantity.Equal(decimal.RequireFromString("45.945325")))
	assert.Equal(t, domain.TradeStatusPending, got[0].Status)

	require.NoError(t, repo.UpdateStatus(ctx, "TXN00001", domain.TradeStatusCompleted))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "TXN09999", domain.TradeStatusCompleted), domain.ErrNotFound)
	got, err = repo.ByAccount(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, domain.TradeStatusCompleted, got[1].Status)

	all, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "TXN00001", all[0].ID, "正序")

	none, err := repo.ByAccount(ctx, "0xdef")
	require.NoError(t, err)
	assert.Empty(t, none)
}
