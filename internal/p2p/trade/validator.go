package trade

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/pkg/xerr"
)

// CurrencySymbol 法币符号，只用于错误提示
const CurrencySymbol = "₹"

// RangeError 金额不在广告限额内，带上两个边界给前端展示
type RangeError struct {
	Amount decimal.Decimal
	Min    decimal.Decimal
	Max    decimal.Decimal
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("Amount must be between %s%s and %s%s", CurrencySymbol, e.Min.String(), CurrencySymbol, e.Max.String())
}

func (e *RangeError) ErrCode() int { return xerr.AmountOutOfRange }

// BelowMin true 表示违反的是下限
func (e *RangeError) BelowMin() bool { return e.Amount.LessThan(e.Min) }

var errInvalidAmount = xerr.NewField(xerr.InvalidAmount, "amount", "Please enter a valid amount")

// Validate 校验法币金额，按顺序短路：
//  1. 金额 > 0，否则 InvalidAmount
//  2. min <= 金额 <= max，否则 *RangeError
//
// 纯函数；成功时 TokenQuantity = amount/unitPrice 保留 6 位，Total 保留 2 位
func Validate(l *domain.Listing, amount decimal.Decimal) (*domain.TradeProposal, error) {
	if l == nil {
		return nil, xerr.New(xerr.RequestParamsError, "listing is required")
	}
	if !amount.IsPositive() {
		return nil, errInvalidAmount
	}
	if !l.Limit.Contains(amount) {
		return nil, &RangeError{Amount: amount, Min: l.Limit.Min, Max: l.Limit.Max}
	}
	if !l.UnitPrice.IsPositive() {
		// 构造时已保证，走到这里说明数据源坏了
		return nil, xerr.NewField(xerr.InvalidListingFields, "unit_price", "listing has no valid unit price")
	}
	return &domain.TradeProposal{
		Listing:       l,
		ListingID:     l.ID,
		Action:        l.Direction.Complement(),
		FiatAmount:    amount,
		TokenQuantity: amount.DivRound(l.UnitPrice, domain.TokenDisplayPlaces),
		Total:         amount.Round(domain.FiatDisplayPlaces),
	}, nil
}

// ValidateInput 处理用户原始输入；空串、非数字都算 InvalidAmount
func ValidateInput(l *domain.Listing, raw string) (*domain.TradeProposal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errInvalidAmount
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errInvalidAmount
	}
	return Validate(l, amount)
}

// Propose 在金额校验之后再检查动作方向和支付方式
// method 为空时取广告的第一个支付方式
func Propose(l *domain.Listing, action domain.Direction, raw, method string) (*domain.TradeProposal, error) {
	p, err := ValidateInput(l, raw)
	if err != nil {
		return nil, err
	}
	if action != l.Direction.Complement() {
		return nil, xerr.NewField(xerr.RequestParamsError, "action",
			fmt.Sprintf("a %s listing can only be matched by %s", l.Direction, l.Direction.Complement()))
	}
	method = strings.TrimSpace(method)
	if method == "" && len(l.PaymentMethods) > 0 {
		method = l.PaymentMethods[0]
	}
	if !l.AcceptsPaymentMethod(method) {
		return nil, xerr.NewField(xerr.InvalidPaymentMethod, "payment_method", xerr.MapErrMsg(xerr.InvalidPaymentMethod))
	}
	p.PaymentMethod = method
	return p, nil
}
