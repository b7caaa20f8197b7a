package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction 广告方向：BUY 表示发布者想买入代币，SELL 表示想卖出
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Complement 反方向；浏览者想买就看卖单，想卖就看买单
func (d Direction) Complement() Direction {
	if d == DirectionBuy {
		return DirectionSell
	}
	return DirectionBuy
}

func (d Direction) Valid() bool {
	return d == DirectionBuy || d == DirectionSell
}

func (d Direction) String() string { return string(d) }

// ParseDirection 大小写不敏感，"buy"/"BUY" 都可以
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// Token 支持的稳定币
type Token string

const (
	TokenUSDC Token = "USDC"
	TokenUSDT Token = "USDT"
)

// SupportedTokens 顺序固定，余额查询等按这个顺序输出
var SupportedTokens = []Token{TokenUSDC, TokenUSDT}

func (t Token) Valid() bool {
	for _, s := range SupportedTokens {
		if t == s {
			return true
		}
	}
	return false
}

func (t Token) String() string { return string(t) }

func ParseToken(s string) (Token, error) {
	t := Token(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unsupported token %q", s)
	}
	return t, nil
}

// Limit 单笔法币金额区间，两端都包含
type Limit struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Contains min <= amount <= max
func (l Limit) Contains(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(l.Min) && amount.LessThanOrEqual(l.Max)
}

// Listing 一条广告。由 ads.Builder 创建，之后不再修改
type Listing struct {
	ID               string          `json:"id"`
	Direction        Direction       `json:"direction"`
	Token            Token           `json:"token"`
	UnitPrice        decimal.Decimal `json:"unit_price"` // 每个代币的法币价格
	Available        decimal.Decimal `json:"available"`  // 可交易的代币数量
	Limit            Limit           `json:"limit"`
	PaymentMethods   []string        `json:"payment_methods"`
	ListerName       string          `json:"lister_name"`
	ListerRating     float64         `json:"lister_rating"`
	ListerTradeCount int             `json:"lister_trade_count"`
	ListerOnline     bool            `json:"lister_online"`
	Location         string          `json:"location"`
	Distance         string          `json:"distance,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// AcceptsPaymentMethod 精确匹配广告支持的支付方式
func (l *Listing) AcceptsPaymentMethod(method string) bool {
	for _, m := range l.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
