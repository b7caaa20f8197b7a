package trade

import "p2pex.com/internal/p2p/domain"

// Quote 展示用的报价，数字都已按固定精度格式化
type Quote struct {
	ListingID     string `json:"listing_id"`
	Action        string `json:"action"`
	Token         string `json:"token"`
	UnitPrice     string `json:"unit_price"`
	FiatAmount    string `json:"fiat_amount"`
	TokenQuantity string `json:"token_quantity"`
	Total         string `json:"total"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// Format 代币 6 位小数，法币 2 位小数
func Format(p *domain.TradeProposal) Quote {
	q := Quote{
		ListingID:     p.ListingID,
		Action:        p.Action.String(),
		FiatAmount:    p.FiatAmount.StringFixed(domain.FiatDisplayPlaces),
		TokenQuantity: p.TokenQuantity.StringFixed(domain.TokenDisplayPlaces),
		Total:         p.Total.StringFixed(domain.FiatDisplayPlaces),
		PaymentMethod: p.PaymentMethod,
	}
	if p.Listing != nil {
		q.Token = p.Listing.Token.String()
		q.UnitPrice = p.Listing.UnitPrice.StringFixed(domain.FiatDisplayPlaces)
	}
	return q
}
