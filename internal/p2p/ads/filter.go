package ads

import (
	"strings"

	"golang.org/x/text/cases"
	"p2pex.com/internal/p2p/domain"
)

// FilterOptions 额外的筛选条件，零值不做任何过滤
type FilterOptions struct {
	Location   string // 地点子串，大小写不敏感
	OnlineOnly bool
}

// Filter 浏览者想 BUY 就给他看 SELL 广告，反之亦然；同时要求代币一致
// 保持输入顺序；没有匹配时返回空切片（不是 nil，也不是错误）
func Filter(listings []*domain.Listing, viewerAction domain.Direction, token domain.Token) []*domain.Listing {
	return FilterWith(listings, viewerAction, token, FilterOptions{})
}

func FilterWith(listings []*domain.Listing, viewerAction domain.Direction, token domain.Token, opts FilterOptions) []*domain.Listing {
	want := viewerAction.Complement()
	out := make([]*domain.Listing, 0, len(listings))

	var loc string
	if opts.Location != "" {
		loc = fold(opts.Location)
	}
	for _, l := range listings {
		if l == nil || l.Token != token || l.Direction != want {
			continue
		}
		if opts.OnlineOnly && !l.ListerOnline {
			continue
		}
		if loc != "" && !strings.Contains(fold(l.Location), loc) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Caser 有状态，不能跨 goroutine 共用，每次新建
func fold(s string) string {
	return cases.Fold().String(s)
}
