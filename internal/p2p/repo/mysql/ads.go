package mysql

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/internal/p2p/repo/model"
	"p2pex.com/pkg/orm"
)

type ListingRepo struct {
	db *gorm.DB
}

var _ domain.ListingStore = (*ListingRepo)(nil)

func NewListingRepo(db *gorm.DB) *ListingRepo {
	return &ListingRepo{db: db}
}

func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	row := toAdRow(l)
	return r.db.WithContext(ctx).Create(&row).Error
}

// Publish 让仓储可以直接挂到 ads.Builder 上
func (r *ListingRepo) Publish(ctx context.Context, l *domain.Listing) error {
	return r.Create(ctx, l)
}

// List 只返回上架中的广告，新的在前
func (r *ListingRepo) List(ctx context.Context, q domain.ListingQuery) ([]*domain.Listing, error) {
	tx := r.db.WithContext(ctx).
		Model(&model.AdRow{}).
		Where("is_active = ?", true)

	if q.Direction != "" {
		tx = tx.Where("ad_type = ?", adType(q.Direction))
	}
	if q.Token != "" {
		tx = tx.Where("token = ?", string(q.Token))
	}
	if loc := strings.TrimSpace(q.Location); loc != "" {
		tx = tx.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(loc)+"%")
	}
	tx = orm.ApplyPagination(tx.Order("created_at DESC"), q.Page, q.Limit)

	var rows []model.AdRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Listing, 0, len(rows))
	for i := range rows {
		out = append(out, fromAdRow(&rows[i]))
	}
	return out, nil
}

// Deactivate 下架
func (r *ListingRepo) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&model.AdRow{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func adType(d domain.Direction) string {
	return strings.ToLower(string(d))
}

func toAdRow(l *domain.Listing) model.AdRow {
	return model.AdRow{
		ID:               l.ID,
		AdType:           adType(l.Direction),
		Token:            string(l.Token),
		Price:            l.UnitPrice,
		AvailableAmount:  l.Available,
		MinLimit:         l.Limit.Min,
		MaxLimit:         l.Limit.Max,
		PaymentMethods:   l.PaymentMethods,
		ListerName:       l.ListerName,
		ListerRating:     l.ListerRating,
		ListerTradeCount: l.ListerTradeCount,
		ListerOnline:     l.ListerOnline,
		Location:         l.Location,
		IsActive:         true,
		CreatedAt:        l.CreatedAt,
	}
}

func fromAdRow(r *model.AdRow) *domain.Listing {
	return &domain.Listing{
		ID:               r.ID,
		Direction:        domain.Direction(strings.ToUpper(r.AdType)),
		Token:            domain.Token(r.Token),
		UnitPrice:        r.Price,
		Available:        r.AvailableAmount,
		Limit:            domain.Limit{Min: r.MinLimit, Max: r.MaxLimit},
		PaymentMethods:   r.PaymentMethods,
		ListerName:       r.ListerName,
		ListerRating:     r.ListerRating,
		ListerTradeCount: r.ListerTradeCount,
		ListerOnline:     r.ListerOnline,
		Location:         r.Location,
		CreatedAt:        r.CreatedAt,
	}
}
