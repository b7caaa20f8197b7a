package trade

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/pkg/logger"
)

// Period 交易记录的时间范围
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod 未知值按 all 处理
func ParsePeriod(s string) Period {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return p
	default:
		return PeriodAll
	}
}

// Query Recent 的筛选条件
type Query struct {
	Period  Period
	Search  string // 匹配 id / 对手方 / 代币，大小写不敏感
	Account string // 为空不过滤
}

// Stats 交易统计
type Stats struct {
	TotalTrades   int             `json:"total_trades"`
	Completed     int             `json:"completed"`
	TotalVolume   decimal.Decimal `json:"total_volume"` // 已完成交易的法币金额
	SuccessRate   decimal.Decimal `json:"success_rate"` // 百分比，1 位小数
	FavoriteAgent string          `json:"favorite_agent,omitempty"`
}

// Log 交易请求记录（只记录，不撮合不结算）
type Log struct {
	mu      sync.RWMutex
	records []*domain.TradeRecord
	seq     atomic.Uint64
	store   domain.TradeStore
	now     func() time.Time
}

type LogOption func(*Log)

// WithStore 同时写远端存储，失败只打日志
func WithStore(s domain.TradeStore) LogOption {
	return func(l *Log) { l.store = s }
}

func WithLogClock(now func() time.Time) LogOption {
	return func(l *Log) { l.now = now }
}

func NewLog(opts ...LogOption) *Log {
	l := &Log{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record 把一个已校验的提案记成 pending 的交易请求
// 返回的是副本，之后的状态变化不会反映到它上面
func (l *Log) Record(ctx context.Context, p *domain.TradeProposal, account, message string) domain.TradeRecord {
	rec := &domain.TradeRecord{
		ID:            fmt.Sprintf("TXN%05d", l.seq.Add(1)),
		ListingID:     p.ListingID,
		Action:        p.Action,
		FiatAmount:    p.FiatAmount,
		TokenQuantity: p.TokenQuantity,
		PaymentMethod: p.PaymentMethod,
		Account:       account,
		Message:       message,
		Status:        domain.TradeStatusPending,
		CreatedAt:     l.now(),
	}
	if p.Listing != nil {
		rec.Token = p.Listing.Token
		rec.UnitPrice = p.Listing.UnitPrice
		rec.Counterparty = p.Listing.ListerName
	}
	return l.Append(ctx, rec)
}

// Append 直接追加一条记录（导入/演示数据），返回追加时的副本
func (l *Log) Append(ctx context.Context, rec *domain.TradeRecord) domain.TradeRecord {
	l.mu.Lock()
	l.records = append(l.records, rec)
	snap := *rec
	l.mu.Unlock()

	if l.store != nil {
		if err := l.store.Create(ctx, &snap); err != nil {
			logger.Warn(ctx, "persist trade record failed", zap.String("id", snap.ID), zap.Error(err))
		}
	}
	return snap
}

// SetStatus 找不到返回 false；存储支持时同步状态，失败只记日志
func (l *Log) SetStatus(ctx context.Context, id string, st domain.TradeStatus) bool {
	found := false
	l.mu.Lock()
	for _, r := range l.records {
		if r.ID == id {
			r.Status = st
			found = true
			break
		}
	}
	l.mu.Unlock()
	if !found {
		return false
	}

	if u, ok := l.store.(domain.TradeStatusUpdater); ok {
		if err := u.UpdateStatus(ctx, id, st); err != nil {
			logger.Warn(ctx, "persist trade status failed", zap.String("id", id), zap.Error(err))
		}
	}
	return true
}

// Restore 装入已持久化的记录（启动回放），不再写回存储
// 序号从已有最大的 TXN 编号之后继续
func (l *Log) Restore(recs []*domain.TradeRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range recs {
		l.records = append(l.records, r)
		var n uint64
		if _, err := fmt.Sscanf(r.ID, "TXN%d", &n); err == nil && n > l.seq.Load() {
			l.seq.Store(n)
		}
	}
}

// Recent 按条件筛选，新的在前
func (l *Log) Recent(q Query) []domain.TradeRecord {
	now := l.now()
	search := strings.ToLower(strings.TrimSpace(q.Search))

	l.mu.RLock()
	out := make([]domain.TradeRecord, 0, len(l.records))
	for _, r := range l.records {
		if q.Account != "" && !strings.EqualFold(r.Account, q.Account) {
			continue
		}
		if !inPeriod(r.CreatedAt, now, q.Period) {
			continue
		}
		if search != "" && !matches(r, search) {
			continue
		}
		out = append(out, *r)
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Stats 统计给定记录；传 nil 统计全部
func (l *Log) Stats(records []domain.TradeRecord) Stats {
	if records == nil {
		records = l.Recent(Query{Period: PeriodAll})
	}
	st := Stats{TotalTrades: len(records), TotalVolume: decimal.Zero, SuccessRate: decimal.Zero}
	if len(records) == 0 {
		return st
	}

	agents := make(map[string]int)
	var order []string
	for _, r := range records {
		if r.Status == domain.TradeStatusCompleted {
			st.Completed++
			st.TotalVolume = st.TotalVolume.Add(r.FiatAmount)
		}
		if r.Counterparty == "" {
			continue
		}
		if _, ok := agents[r.Counterparty]; !ok {
			order = append(order, r.Counterparty)
		}
		agents[r.Counterparty]++
	}
	st.SuccessRate = decimal.NewFromInt(int64(st.Completed)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(len(records))), 1)

	best := 0
	for _, name := range order {
		if agents[name] > best {
			best, st.FavoriteAgent = agents[name], name
		}
	}
	return st
}

// Live pending / in_progress
func Live(records []domain.TradeRecord) []domain.TradeRecord {
	out := make([]domain.TradeRecord, 0, len(records))
	for _, r := range records {
		if r.Status == domain.TradeStatusPending || r.Status == domain.TradeStatusInProgress {
			out = append(out, r)
		}
	}
	return out
}

func inPeriod(at, now time.Time, p Period) bool {
	switch p {
	case PeriodToday:
		y1, m1, d1 := at.In(now.Location()).Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case PeriodWeek:
		return !at.Before(now.Add(-7 * 24 * time.Hour))
	case PeriodMonth:
		return !at.Before(now.Add(-30 * 24 * time.Hour))
	default:
		return true
	}
}

func matches(r *domain.TradeRecord, search string) bool {
	return strings.Contains(strings.ToLower(r.ID), search) ||
		strings.Contains(strings.ToLower(r.Counterparty), search) ||
		strings.Contains(strings.ToLower(string(r.Token)), search)
}
