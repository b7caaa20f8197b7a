package mysql

import (
	"context"

	"gorm.io/gorm"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/internal/p2p/repo/model"
)

type CityRepo struct {
	db *gorm.DB
}

var _ domain.CitySource = (*CityRepo)(nil)

func NewCityRepo(db *gorm.DB) *CityRepo {
	return &CityRepo{db: db}
}

// Cities 上线中的城市，交易员多的在前，同数量按名字
func (r *CityRepo) Cities(ctx context.Context) ([]domain.CityEntry, error) {
	var rows []model.CityRow
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("trader_count DESC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.CityEntry, 0, len(rows))
	for _, c := range rows {
		out = append(out, domain.CityEntry{
			Name:        c.Name,
			State:       c.State,
			Country:     c.Country,
			TraderCount: c.TraderCount,
		})
	}
	return out, nil
}
