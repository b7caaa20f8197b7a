package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AdRow struct {
	ID               string          `gorm:"column:id;primaryKey;type:varchar(64)"`
	AdType           string          `gorm:"column:ad_type;type:varchar(8);not null;index:idx_ads_active_type_token,priority:2"` // buy / sell
	Token            string          `gorm:"column:token;type:varchar(16);not null;index:idx_ads_active_type_token,priority:3"`
	Price            decimal.Decimal `gorm:"column:price;type:decimal(20,8);not null"`
	AvailableAmount  decimal.Decimal `gorm:"column:available_amount;type:decimal(30,8);not null"`
	MinLimit         decimal.Decimal `gorm:"column:min_limit;type:decimal(20,2);not null"`
	MaxLimit         decimal.Decimal `gorm:"column:max_limit;type:decimal(20,2);not null"`
	PaymentMethods   []string        `gorm:"column:payment_methods;type:text;serializer:json"`
	ListerName       string          `gorm:"column:lister_name;type:varchar(64)"`
	ListerRating     float64         `gorm:"column:lister_rating"`
	ListerTradeCount int             `gorm:"column:lister_trade_count"`
	ListerOnline     bool            `gorm:"column:lister_online"`
	Location         string          `gorm:"column:location;type:varchar(128)"`
	IsActive         bool            `gorm:"column:is_active;not null;index:idx_ads_active_type_token,priority:1"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (AdRow) TableName() string {
	return "ads"
}

type CityRow struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;type:varchar(64);not null;uniqueIndex"`
	State       string    `gorm:"column:state;type:varchar(64)"`
	Country     string    `gorm:"column:country;type:varchar(64)"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	TraderCount int       `gorm:"column:trader_count;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CityRow) TableName() string {
	return "cities"
}

type TradeRow struct {
	ID            string          `gorm:"column:id;primaryKey;type:varchar(32)"`
	AdID          string          `gorm:"column:ad_id;type:varchar(64);index"`
	Action        string          `gorm:"column:action;type:varchar(8)"`
	Token         string          `gorm:"column:token;type:varchar(16)"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(30,8)"` // 代币数量
	Price         decimal.Decimal `gorm:"column:price;type:decimal(20,8)"`
	TotalValue    decimal.Decimal `gorm:"column:total_value;type:decimal(20,2)"` // 法币金额
	PaymentMethod string          `gorm:"column:payment_method;type:varchar(64)"`
	Counterparty  string          `gorm:"column:counterparty;type:varchar(64)"`
	Account       string          `gorm:"column:account;type:varchar(64);index"`
	Status        string          `gorm:"column:status;type:varchar(16)"`
	TxHash        string          `gorm:"column:tx_hash;type:varchar(80)"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (TradeRow) TableName() string {
	return "trades"
}
