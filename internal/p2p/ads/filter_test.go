package ads

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p2pex.com/internal/p2p/domain"
)

func listing(id string, dir domain.Direction, token domain.Token) *domain.Listing {
	return &domain.Listing{
		ID:             id,
		Direction:      dir,
		Token:          token,
		UnitPrice:      decimal.RequireFromString("87.06"),
		Available:      decimal.NewFromInt(100),
		Limit:          domain.Limit{Min: decimal.NewFromInt(500), Max: decimal.NewFromInt(5000)},
		PaymentMethods: []string{"UPI Transfer"},
		ListerOnline:   true,
		Location:       "Mumbai Central",
	}
}

func mixedListings() []*domain.Listing {
	return []*domain.Listing{
		listing("a", domain.DirectionSell, domain.TokenUSDC),
		listing("b", domain.DirectionBuy, domain.TokenUSDC),
		listing("c", domain.DirectionSell, domain.TokenUSDT),
		listing("d", domain.DirectionSell, domain.TokenUSDC),
		listing("e", domain.DirectionBuy, domain.TokenUSDT),
	}
}

func ids(ls []*domain.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		action domain.Direction
		token  domain.Token
		want   []string
	}{
		{"买 USDC 看卖单", domain.DirectionBuy, domain.TokenUSDC, []string{"a", "d"}},
		{"卖 USDC 看买单", domain.DirectionSell, domain.TokenUSDC, []string{"b"}},
		{"买 USDT 看卖单", domain.DirectionBuy, domain.TokenUSDT, []string{"c"}},
		{"卖 USDT 看买单", domain.DirectionSell, domain.TokenUSDT, []string{"e"}},
		{"未知代币为空", domain.DirectionBuy, domain.Token("DAI"), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(mixedListings(), tt.action, tt.token)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_MembershipRule(t *testing.T) {
	all := mixedListings()
	for _, action := range []domain.Direction{domain.DirectionBuy, domain.DirectionSell} {
		for _, token := range domain.SupportedTokens {
			got := Filter(all, action, token)
			in := make(map[string]bool, len(got))
			for _, l := range got {
				in[l.ID] = true
			}
			for _, l := range all {
				want := l.Token == token && l.Direction == action.Complement()
				assert.Equal(t, want, in[l.ID], "action=%s token=%s id=%s", action, token, l.ID)
			}
		}
	}
}

func TestFilter_Idempotent(t *testing.T) {
	once := Filter(mixedListings(), domain.DirectionBuy, domain.TokenUSDC)
	twice := Filter(once, domain.DirectionBuy, domain.TokenUSDC)
	assert.Equal(t, ids(once), ids(twice))
}

func TestFilter_EmptyInput(t *testing.T) {
	got := Filter(nil, domain.DirectionBuy, domain.TokenUSDC)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterWith_Options(t *testing.T) {
	all := mixedListings()
	all[0].Location = "Pune West"
	all[3].ListerOnline = false

	got := FilterWith(all, domain.DirectionBuy, domain.TokenUSDC, FilterOptions{Location: "pune"})
	assert.Equal(t, []string{"a"}, ids(got))

	got = FilterWith(all, domain.DirectionBuy, domain.TokenUSDC, FilterOptions{OnlineOnly: true})
	assert.Equal(t, []string{"a"}, ids(got))

	got = FilterWith(all, domain.DirectionBuy, domain.TokenUSDC, FilterOptions{Location: "MUMBAI"})
	assert.Equal(t, []string{"d"}, ids(got))
}

func TestFilter_SeedListings(t *testing.T) {
	seed := SeedListings("Mumbai", time.Now())
	require.Len(t, seed, 4)
	assert.Equal(t, "Mumbai Central", seed[0].Location)

	// 想买 USDT：Priya、Amit 的卖单
	got := Filter(seed, domain.DirectionBuy, domain.TokenUSDT)
	assert.Equal(t, []string{"1", "3"}, ids(got))
}
