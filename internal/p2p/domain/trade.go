package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// 展示精度：代币数量 6 位，法币 2 位
const (
	TokenDisplayPlaces = 6
	FiatDisplayPlaces  = 2
)

// TradeProposal 校验通过的交易意向，不落库
// Listing 只是引用，归 ads.Directory 所有
type TradeProposal struct {
	Listing       *Listing        `json:"-"`
	ListingID     string          `json:"listing_id"`
	Action        Direction       `json:"action"`
	FiatAmount    decimal.Decimal `json:"fiat_amount"`
	TokenQuantity decimal.Decimal `json:"token_quantity"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method,omitempty"`
}

// TradeStatus 交易请求状态，只做记录，不做结算
type TradeStatus string

const (
	TradeStatusPending    TradeStatus = "pending"
	TradeStatusInProgress TradeStatus = "in_progress"
	TradeStatusCompleted  TradeStatus = "completed"
	TradeStatusCancelled  TradeStatus = "cancelled"
)

// TradeRecord 用户提交过的交易请求
type TradeRecord struct {
	ID            string          `json:"id"`
	ListingID     string          `json:"listing_id"`
	Action        Direction       `json:"action"`
	Token         Token           `json:"token"`
	FiatAmount    decimal.Decimal `json:"fiat_amount"`
	TokenQuantity decimal.Decimal `json:"token_quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	PaymentMethod string          `json:"payment_method"`
	Counterparty  string          `json:"counterparty"`
	Account       string          `json:"account,omitempty"`
	Message       string          `json:"message,omitempty"`
	Status        TradeStatus     `json:"status"`
	TxHash        string          `json:"tx_hash,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
