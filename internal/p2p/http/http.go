package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprom "github.com/zsais/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
	"p2pex.com/internal/p2p/feed"
	"p2pex.com/internal/p2p/handler"
	"p2pex.com/pkg/common"
	"p2pex.com/pkg/middleware"
	"p2pex.com/pkg/ratelimit"
)

type Config struct {
	Addr        string
	ServiceName string
	Metrics     bool // 挂 go-gin-prometheus 和 /metrics
	RateRPS     float64
	RateBurst   int
	SlowRequest time.Duration
}

// Handlers 各路由组的处理器，Feed 为空时不挂 /ws/ads
type Handlers struct {
	Ads     *handler.Ads
	City    *handler.City
	Profile *handler.Profile
	Wallet  *handler.Wallet
	Trades  *handler.Trades
	Feed    *feed.Server
}

// NewEngine 组装中间件和路由；限流 janitor 跟随 ctx 退出
func NewEngine(ctx context.Context, cfg Config, h Handlers) *gin.Engine {
	rps, burst := cfg.RateRPS, cfg.RateBurst
	if rps <= 0 {
		rps = 50
	}
	if burst <= 0 {
		burst = 100
	}
	store := ratelimit.NewStore(rate.Limit(rps), burst, 10*time.Minute)
	store.StartJanitor(ctx, time.Minute)

	r := gin.New()
	r.ContextWithFallback = true
	if cfg.Metrics {
		p := ginprom.NewPrometheus(cfg.ServiceName)
		p.Use(r)
	}
	r.Use(
		otelgin.Middleware(cfg.ServiceName),
		middleware.ReqId(),
		cors.Default(),
		middleware.Recover(),
		middleware.AccessLog(cfg.SlowRequest),
		middleware.RateLimit(store),
	)

	r.GET("/healthz", func(c *gin.Context) { common.Success(c, gin.H{"status": "ok"}) })
	if h.Feed != nil {
		r.GET("/ws/ads", gin.WrapF(h.Feed.ServeWS))
	}

	api := r.Group("/api")
	adsRouter(api, h.Ads)
	cityRouter(api, h.City)
	profileRouter(api, h.Profile)
	walletRouter(api, h.Wallet)
	tradeRouter(api, h.Trades)
	return r
}

func NewServer(addr string, engine http.Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        engine,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}
