package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"p2pex.com/internal/p2p/ads"
	"p2pex.com/internal/p2p/city"
	"p2pex.com/internal/p2p/domain"
	"p2pex.com/internal/p2p/feed"
	"p2pex.com/internal/p2p/handler"
	ghttp "p2pex.com/internal/p2p/http"
	"p2pex.com/internal/p2p/profile"
	"p2pex.com/internal/p2p/repo/journal"
	"p2pex.com/internal/p2p/repo/memory"
	gmysql "p2pex.com/internal/p2p/repo/mysql"
	rkv "p2pex.com/internal/p2p/repo/redis"
	"p2pex.com/internal/p2p/trade"
	"p2pex.com/internal/p2p/wallet"
	"p2pex.com/pkg/config"
	"p2pex.com/pkg/hdwallet"
	"p2pex.com/pkg/logger"
	"p2pex.com/pkg/metrics"
	"p2pex.com/pkg/orm"
	"p2pex.com/pkg/ratelimit"
	"p2pex.com/pkg/safe"
	"p2pex.com/pkg/trace"
	"p2pex.com/pkg/xredis"
)

const serviceName = "p2p-service"

// App 组装好的服务；外部依赖（库、Redis、RPC）都是可选的
type App struct {
	cfg       *Cfg
	Engine    *gin.Engine
	Directory *ads.Directory
	Session   *wallet.Session

	db      *gorm.DB
	rdb     *redis.Client
	closers []func(context.Context) error
}

// Run 读配置、启动 HTTP，ctx 结束后优雅退出
func Run(ctx context.Context) error {
	cfg := &Cfg{}
	if _, err := config.LoadAndWatch(serviceName, cfg, config.WithDefaults(defaults)); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.InitWithFile(cfg.Name, cfg.LogLevel, cfg.LogFile)
	defer logger.Sync()

	a, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Close(closeCtx)
	}()

	srv := ghttp.NewServer(cfg.HTTP.Addr, a.Engine)
	errCh := make(chan error, 1)
	safe.Go(func() {
		logger.Info(ctx, "http listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	})

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "http shutdown", zap.Error(err))
	}
	logger.Info(shutdownCtx, "p2p service exit")
	return nil
}

// New 按配置构建所有组件，失败时已经打开的资源会被关闭
func New(ctx context.Context, cfg *Cfg) (*App, error) {
	a := &App{cfg: cfg}
	ready := false
	defer func() {
		if !ready {
			a.Close(context.Background())
		}
	}()

	if cfg.OTel.Enabled {
		shutdown, err := trace.InitTrace(ctx, cfg.Name, cfg.OTel.Addr)
		if err != nil {
			return nil, fmt.Errorf("init trace: %w", err)
		}
		a.closers = append(a.closers, shutdown)
	}
	if err := a.openDB(ctx); err != nil {
		return nil, err
	}
	if err := a.openRedis(ctx); err != nil {
		return nil, err
	}

	// 会话数据
	var kv domain.KVStore = memory.NewKV()
	if a.rdb != nil {
		kv = rkv.NewKV(a.rdb, cfg.Redis.KeyPrefix, time.Duration(cfg.Redis.TTLHours)*time.Hour)
	}
	profiles := profile.NewStore(kv, cfg.Session.DefaultCity)

	// 城市
	var citySrc domain.CitySource
	if a.db != nil {
		citySrc = gmysql.NewCityRepo(a.db)
	}
	lookup, err := city.NewLookup(citySrc, city.Config{
		CacheTTL:     time.Duration(cfg.Cities.CacheTTLSeconds) * time.Second,
		FetchTimeout: time.Duration(cfg.Cities.FetchTimeoutMs) * time.Millisecond,
		Breaker:      breakerRule(cfg.Cities.Breaker),
	})
	if err != nil {
		return nil, fmt.Errorf("city lookup: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { lookup.Close(); return nil })

	// 钱包
	tokens, err := a.openWallet(ctx)
	if err != nil {
		return nil, err
	}

	// 广告
	hub := feed.NewHub()
	publishers := []ads.Publisher{hub}
	dir := ads.NewDirectory()
	if a.db != nil {
		listings := gmysql.NewListingRepo(a.db)
		publishers = append(publishers, listings)
		if err := hydrate(ctx, dir, listings); err != nil {
			logger.Warn(ctx, "load listings from db failed", zap.Error(err))
		}
	}
	if cfg.Session.SeedDemoAds {
		selected := profiles.SelectedCity(ctx)
		if err := dir.Seed(selected, time.Now()); err != nil {
			logger.Warn(ctx, "seed demo listings failed", zap.String("city", selected), zap.Error(err))
		}
	}
	builder := ads.NewBuilder(dir, ads.WithPublisher(publishers...))
	trades, err := a.openTrades(ctx)
	if err != nil {
		return nil, err
	}

	h := ghttp.Handlers{
		Ads:     &handler.Ads{Directory: dir, Builder: builder, Profiles: profiles, Trades: trades},
		City:    &handler.City{Lookup: lookup, Session: profiles},
		Profile: &handler.Profile{Store: profiles},
		Wallet:  &handler.Wallet{Session: a.Session, TokenReader: tokens},
		Trades:  &handler.Trades{Log: trades},
	}
	if cfg.Feed.Enabled {
		h.Feed = feed.NewServer(ctx, hub)
	}
	a.Directory = dir
	a.Engine = ghttp.NewEngine(ctx, ghttp.Config{
		Addr:        cfg.HTTP.Addr,
		ServiceName: cfg.Name,
		Metrics:     cfg.HTTP.Metrics,
		RateRPS:     cfg.HTTP.Rate,
		RateBurst:   cfg.HTTP.Burst,
		SlowRequest: time.Duration(cfg.HTTP.SlowRequestMs) * time.Millisecond,
	}, h)

	logger.Info(ctx, "p2p service ready",
		zap.Bool("db", a.db != nil),
		zap.Bool("redis", a.rdb != nil),
		zap.Bool("wallet", tokens != nil),
		zap.Int("listings", dir.Len()),
	)
	ready = true
	return a, nil
}

// Close 逆序释放资源
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn(ctx, "close resource", zap.Error(err))
		}
	}
	a.closers = nil
}

func (a *App) openDB(ctx context.Context) error {
	dbCfg := a.cfg.Db
	if dbCfg.SourceName == "" {
		return nil
	}
	sqlDB, err := orm.OpenSQL(ctx, &orm.Config{
		Driver:      dbCfg.Type,
		DSN:         dbCfg.SourceName,
		MaxIdle:     dbCfg.MaxIdleConns,
		MaxOpen:     dbCfg.MaxOpenConns,
		MaxLifetime: dbCfg.ConnMaxLifetimeMinutes,
	})
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })

	gdb, err := orm.NewGorm(sqlDB)
	if err != nil {
		return fmt.Errorf("gorm: %w", err)
	}
	if dbCfg.AutoMigrate {
		if err := gmysql.AutoMigrate(gdb); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}
	metrics.ObserveDB(ctx, sqlDB, 5*time.Second)
	a.db = gdb
	return nil
}

func (a *App) openRedis(ctx context.Context) error {
	rc := a.cfg.Redis
	if rc.Addr == "" {
		return nil
	}
	rdb, err := xredis.NewRedis(ctx, &xredis.Config{
		Addr:         rc.Addr,
		Password:     rc.Auth,
		DB:           rc.Database,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
	})
	if err != nil {
		return fmt.Errorf("open redis: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
	metrics.ObserveRedis(ctx, rdb, 5*time.Second)
	a.rdb = rdb
	return nil
}

// openWallet 没配 rpc_url 时会话没有 provider，代币余额读取器为 nil
func (a *App) openWallet(ctx context.Context) (*wallet.TokenReader, error) {
	wc := a.cfg.Wallet
	timeout := time.Duration(wc.CallTimeoutMs) * time.Millisecond
	if wc.RPCURL == "" {
		a.Session = wallet.NewSession(nil, timeout)
		return nil, nil
	}

	networks := make(map[int64]string, len(wc.Networks))
	for k, u := range wc.Networks {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("wallet.networks: bad chain id %q", k)
		}
		networks[id] = u
	}
	key, err := walletKey(ctx, wc)
	if err != nil {
		return nil, err
	}
	p, err := wallet.NewEthProvider(ctx, wallet.EthConfig{
		RPCURL:     wc.RPCURL,
		Networks:   networks,
		PrivateKey: key,
	})
	if err != nil {
		return nil, fmt.Errorf("wallet provider: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { p.Close(); return nil })

	a.Session = wallet.NewSession(p, timeout)
	safe.GoCtx(ctx, func(ctx context.Context) {
		a.Session.Watch(ctx, p.Events())
	})
	return wallet.NewTokenReader(p.Caller, timeout), nil
}

// openTrades 交易记录存储：数据库 > 本地 journal > 只在内存
func (a *App) openTrades(ctx context.Context) (*trade.Log, error) {
	var store domain.TradeStore
	switch {
	case a.db != nil:
		store = gmysql.NewTradeRepo(a.db)
	case a.cfg.Trades.JournalPath != "":
		j, err := journal.Open(a.cfg.Trades.JournalPath, a.cfg.Trades.SyncEachWrite)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return j.Close() })
		store = j
	default:
		return trade.NewLog(), nil
	}

	l := trade.NewLog(trade.WithStore(store))
	if loader, ok := store.(domain.TradeLoader); ok {
		recs, err := loader.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load trades: %w", err)
		}
		l.Restore(recs)
		logger.Info(ctx, "trade records restored", zap.Int("count", len(recs)))
	}
	return l, nil
}

// walletKey 返回 hex 私钥，两者都没配时为空（只读钱包）
func walletKey(ctx context.Context, wc Wallet) (string, error) {
	if wc.PrivateKey != "" || wc.Mnemonic == "" {
		return wc.PrivateKey, nil
	}
	key, addr, err := hdwallet.EthKeyHex(wc.Mnemonic, wc.Passphrase, wc.AccountIndex)
	if err != nil {
		return "", fmt.Errorf("derive wallet key: %w", err)
	}
	logger.Info(ctx, "wallet account derived", zap.String("address", addr.Hex()), zap.Uint32("index", wc.AccountIndex))
	return key, nil
}

// hydrate 启动时把库里上架中的广告装进目录
func hydrate(ctx context.Context, dir *ads.Directory, store domain.ListingStore) error {
	list, err := store.List(ctx, domain.ListingQuery{Page: 1, Limit: orm.MaxPageSize})
	if err != nil {
		return err
	}
	// 库里是新的在前，目录按发布顺序追加
	for i := len(list) - 1; i >= 0; i-- {
		if err := dir.Append(list[i]); err != nil && !errors.Is(err, ads.ErrDuplicateID) {
			return err
		}
	}
	return nil
}

func breakerRule(b BreakerConfig) ratelimit.Rule {
	return ratelimit.Rule{
		MaxRequests:             b.MaxRequests,
		Interval:                time.Duration(b.IntervalSeconds) * time.Second,
		Timeout:                 time.Duration(b.TimeoutSeconds) * time.Second,
		TripConsecutiveFailures: b.ConsecutiveFailures,
		TripFailureRate:         b.FailureRate,
		TripMinRequests:         b.MinRequests,
	}
}
