package mysql

import (
	"context"

	"gorm.io/gorm"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/internal/p2p/repo/model"
)

type TradeRepo struct {
	db *gorm.DB
}

var (
	_ domain.TradeStore         = (*TradeRepo)(nil)
	_ domain.TradeStatusUpdater = (*TradeRepo)(nil)
	_ domain.TradeLoader        = (*TradeRepo)(nil)
)

// loadLimit 启动时最多装回的交易记录数
const loadLimit = 1000

func NewTradeRepo(db *gorm.DB) *TradeRepo {
	return &TradeRepo{db: db}
}

func (r *TradeRepo) Create(ctx context.Context, t *domain.TradeRecord) error {
	row := model.TradeRow{
		ID:            t.ID,
		AdID:          t.ListingID,
		Action:        string(t.Action),
		Token:         string(t.Token),
		Amount:        t.TokenQuantity,
		Price:         t.UnitPrice,
		TotalValue:    t.FiatAmount,
		PaymentMethod: t.PaymentMethod,
		Counterparty:  t.Counterparty,
		Account:       t.Account,
		Status:        string(t.Status),
		TxHash:        t.TxHash,
		CreatedAt:     t.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *TradeRepo) UpdateStatus(ctx context.Context, id string, st domain.TradeStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.TradeRow{}).
		Where("id = ?", id).
		Update("status", string(st))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Load 最近的 loadLimit 条，按创建时间正序
func (r *TradeRepo) Load(ctx context.Context) ([]*domain.TradeRecord, error) {
	var rows []model.TradeRow
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(loadLimit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.TradeRecord, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		rec := fromTradeRow(&rows[i])
		out = append(out, &rec)
	}
	return out, nil
}

// ByAccount 某个账户的交易请求，新的在前
func (r *TradeRepo) ByAccount(ctx context.Context, account string) ([]domain.TradeRecord, error) {
	var rows []model.TradeRow
	err := r.db.WithContext(ctx).
		Where("account = ?", account).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.TradeRecord, 0, len(rows))
	for i := range rows {
		out = append(out, fromTradeRow(&rows[i]))
	}
	return out, nil
}

func fromTradeRow(t *model.TradeRow) domain.TradeRecord {
	return domain.TradeRecord{
		ID:            t.ID,
		ListingID:     t.AdID,
		Action:        domain.Direction(t.Action),
		Token:         domain.Token(t.Token),
		FiatAmount:    t.TotalValue,
		TokenQuantity: t.Amount,
		UnitPrice:     t.Price,
		PaymentMethod: t.PaymentMethod,
		Counterparty:  t.Counterparty,
		Account:       t.Account,
		Status:        domain.TradeStatus(t.Status),
		TxHash:        t.TxHash,
		CreatedAt:     t.CreatedAt,
	}
}

// AutoMigrate 本地/测试建表；线上走迁移脚本
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.AdRow{}, &model.CityRow{}, &model.TradeRow{})
}
