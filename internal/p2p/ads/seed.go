package ads

import (
	"time"

	"github.com/shopspring/decimal"
	"p2pex.com/internal/p2p/domain"
)

type seedRow struct {
	id, name  string
	rating    float64
	trades    int
	online    bool
	dir       domain.Direction
	token     domain.Token
	price     string
	available string
	min, max  int64
	methods   []string
	area      string
	distance  string
}

var seedRows = []seedRow{
	{"1", "Priya Sharma", 4.9, 180, true, domain.DirectionSell, domain.TokenUSDT, "87.06", "750", 3500, 6000, []string{"UPI Transfer", "Bank Transfer"}, "Central", "2.5 km"},
	{"2", "Rahul Kumar", 4.8, 156, true, domain.DirectionBuy, domain.TokenUSDC, "87.15", "1200", 2000, 8000, []string{"UPI Transfer", "IMPS"}, "East", "3.2 km"},
	{"3", "Amit Singh", 4.7, 234, false, domain.DirectionSell, domain.TokenUSDT, "87.25", "950", 5000, 10000, []string{"Bank Transfer", "UPI Transfer"}, "West", "4.1 km"},
	{"4", "Sneha Patel", 4.9, 298, true, domain.DirectionBuy, domain.TokenUSDT, "86.95", "2000", 1000, 15000, []string{"UPI Transfer", "PhonePe", "GPay"}, "South", "1.8 km"},
}

// SeedListings 演示用的附近交易员广告，地点挂在所选城市下
func SeedListings(city string, now time.Time) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(seedRows))
	for i, r := range seedRows {
		out = append(out, &domain.Listing{
			ID:               r.id,
			Direction:        r.dir,
			Token:            r.token,
			UnitPrice:        decimal.RequireFromString(r.price),
			Available:        decimal.RequireFromString(r.available),
			Limit:            domain.Limit{Min: decimal.NewFromInt(r.min), Max: decimal.NewFromInt(r.max)},
			PaymentMethods:   append([]string(nil), r.methods...),
			ListerName:       r.name,
			ListerRating:     r.rating,
			ListerTradeCount: r.trades,
			ListerOnline:     r.online,
			Location:         city + " " + r.area,
			Distance:         r.distance,
			CreatedAt:        now.Add(-time.Duration(len(seedRows)-i) * time.Minute),
		})
	}
	return out
}

// Seed 把演示数据灌进目录
func (d *Directory) Seed(city string, now time.Time) error {
	for _, l := range SeedListings(city, now) {
		if err := d.Append(l); err != nil {
			return err
		}
	}
	return nil
}
