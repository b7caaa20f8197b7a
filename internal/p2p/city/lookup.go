package city

import (
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/pkg/logger"
	"p2pex.com/pkg/metrics"
	"p2pex.com/pkg/ratelimit"
	"p2pex.com/pkg/xerr"
)

const (
	breakerName = "city-source"
	cacheKey    = "cities:primary"
)

// Result 搜索结果；Source 标明数据来自主列表还是兜底列表
type Result struct {
	Cities []domain.CityEntry `json:"cities"`
	Source domain.Source      `json:"source"`
}

// Names 只取名字
func (r Result) Names() []string {
	out := make([]string, 0, len(r.Cities))
	for _, c := range r.Cities {
		out = append(out, c.Name)
	}
	return out
}

type Config struct {
	CacheTTL     time.Duration // 主列表缓存时间，<=0 不缓存
	FetchTimeout time.Duration
	Breaker      ratelimit.Rule
}

// Lookup 城市搜索：远端源 -> 缓存 -> 兜底
// 远端失败对调用方是静默的，只体现在 Result.Source 和日志/指标里
type Lookup struct {
	src      domain.CitySource
	static   []domain.CityEntry
	fallback []domain.CityEntry

	cache   *ristretto.Cache
	ttl     time.Duration
	timeout time.Duration
	sf      singleflight.Group
	cb      *ratelimit.Manager
}

// NewLookup src 为 nil 时只用内置列表
func NewLookup(src domain.CitySource, cfg Config) (*Lookup, error) {
	l := &Lookup{
		src:      src,
		static:   StaticCities(),
		fallback: FallbackCities(),
		ttl:      cfg.CacheTTL,
		timeout:  cfg.FetchTimeout,
		cb:       ratelimit.NewManager(cfg.Breaker, nil),
	}
	if l.timeout <= 0 {
		l.timeout = 3 * time.Second
	}
	if src != nil && l.ttl > 0 {
		c, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 1e3,
			MaxCost:     1 << 20,
			BufferItems: 64,
		})
		if err != nil {
			return nil, err
		}
		l.cache = c
	}
	return l, nil
}

// Search 大小写不敏感的子串匹配，空串匹配全部，保持源列表顺序
// 没有匹配返回空切片，不是错误
func (l *Lookup) Search(ctx context.Context, term string) Result {
	list, source := l.candidates(ctx)
	metrics.CityLookupTotal.WithLabelValues(string(source)).Inc()
	return Result{Cities: Match(list, term), Source: source}
}

// Match 纯函数版本，方便单测
func Match(list []domain.CityEntry, term string) []domain.CityEntry {
	out := make([]domain.CityEntry, 0, len(list))
	needle := cases.Fold().String(strings.TrimSpace(term))
	for _, c := range list {
		if needle == "" || strings.Contains(cases.Fold().String(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

func (l *Lookup) candidates(ctx context.Context) ([]domain.CityEntry, domain.Source) {
	if l.src == nil {
		return l.static, domain.SourcePrimary
	}
	if l.cache != nil {
		if v, ok := l.cache.Get(cacheKey); ok {
			return v.([]domain.CityEntry), domain.SourcePrimary
		}
	}

	// 并发请求合并成一次远端调用；远端调用不跟随发起者的取消，
	// 每个调用方只等自己的 ctx
	ch := l.sf.DoChan(cacheKey, func() (interface{}, error) {
		return l.fetch(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			logger.Warn(ctx, "city source unavailable, serving fallback list",
				zap.Int("code", xerr.DirectorySourceUnavailable),
				zap.Error(res.Err),
			)
			return l.fallback, domain.SourceFallback
		}
		return res.Val.([]domain.CityEntry), domain.SourcePrimary
	case <-ctx.Done():
		logger.Debug(ctx, "city search abandoned by caller", zap.Error(ctx.Err()))
		return l.fallback, domain.SourceFallback
	}
}

func (l *Lookup) fetch(ctx context.Context) ([]domain.CityEntry, error) {
	var cities []domain.CityEntry
	err := l.cb.Do(breakerName, func() error {
		c, cancel := context.WithTimeout(ctx, l.timeout)
		defer cancel()
		var err error
		cities, err = l.src.Cities(c)
		return err
	})
	if err != nil {
		return nil, xerr.Wrap(err, xerr.DirectorySourceUnavailable, "fetch cities")
	}
	if l.cache != nil {
		l.cache.SetWithTTL(cacheKey, cities, 1, l.ttl)
		l.cache.Wait()
	}
	return cities, nil
}

// Invalidate 丢弃缓存，下次搜索重新拉取
func (l *Lookup) Invalidate() {
	if l.cache != nil {
		l.cache.Del(cacheKey)
	}
}

// Close 释放缓存的后台 goroutine
func (l *Lookup) Close() {
	if l.cache != nil {
		l.cache.Close()
	}
}
