package domain

import (
	"context"
	"errors"
)

// ErrNotFound KVStore/仓储查不到记录
var ErrNotFound = errors.New("not found")

// KVStore 会话持久化：简单的 key -> string
// 对应浏览器里的 localStorage，核心逻辑只依赖这个接口
type KVStore interface {
	// Get 不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

// ListingQuery 远端广告查询条件，零值表示不过滤
type ListingQuery struct {
	Direction Direction
	Token     Token
	Location  string
	Page      int
	Limit     int
}

// ListingStore 远端广告存储（可选）
type ListingStore interface {
	Create(ctx context.Context, l *Listing) error
	List(ctx context.Context, q ListingQuery) ([]*Listing, error)
}

// CitySource 远端城市列表，按展示顺序返回
type CitySource interface {
	Cities(ctx context.Context) ([]CityEntry, error)
}

// TradeStore 交易请求存储（可选）
type TradeStore interface {
	Create(ctx context.Context, r *TradeRecord) error
}

// TradeStatusUpdater 存储可选实现：交易状态变更
type TradeStatusUpdater interface {
	UpdateStatus(ctx context.Context, id string, st TradeStatus) error
}

// TradeLoader 存储可选实现：启动时取回已有记录，按写入顺序
type TradeLoader interface {
	Load(ctx context.Context) ([]*TradeRecord, error)
}
