package metrics

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	DbPoolOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_db_pool_open",
		Help: "Current open DB connections",
	})
	DbPoolIdle         = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_db_pool_idle"})
	DbPoolInuse        = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_db_pool_inuse"})
	DbPoolWaitCount    = promauto.NewCounter(prometheus.CounterOpts{Name: "app_db_pool_wait_count"})
	DbPoolWaitDuration = promauto.NewCounter(prometheus.CounterOpts{Name: "app_db_pool_wait_seconds"})

	RedisPoolOpen      = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_redis_pool_open"})
	RedisPoolIdle      = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_redis_pool_idle"})
	RedisPoolStale     = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_redis_pool_stale"})
	RedisPoolWaitCount = promauto.NewCounter(prometheus.CounterOpts{Name: "app_redis_pool_wait_count"})
)

// ObserveDB 采集 DB 连接池指标，ctx 结束时退出
func ObserveDB(ctx context.Context, db *sql.DB, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	var lastWaitCount int64
	var lastWaitDuration time.Duration
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		st := db.Stats()
		DbPoolOpen.Set(float64(st.OpenConnections))
		DbPoolIdle.Set(float64(st.Idle))
		DbPoolInuse.Set(float64(st.InUse))

		// Stats 是累计值，只加增量
		if delta := st.WaitCount - lastWaitCount; delta > 0 {
			DbPoolWaitCount.Add(float64(delta))
			lastWaitCount = st.WaitCount
		}
		if delta := st.WaitDuration - lastWaitDuration; delta > 0 {
			DbPoolWaitDuration.Add(delta.Seconds())
			lastWaitDuration = st.WaitDuration
		}
	}
}

// ObserveRedis 采集 Redis 连接池指标
func ObserveRedis(ctx context.Context, rdb *redis.Client, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	var lastWaitCount uint32
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		st := rdb.PoolStats()
		RedisPoolOpen.Set(float64(st.TotalConns))
		RedisPoolIdle.Set(float64(st.IdleConns))
		RedisPoolStale.Set(float64(st.StaleConns))
		if st.WaitCount > lastWaitCount {
			RedisPoolWaitCount.Add(float64(st.WaitCount - lastWaitCount))
			lastWaitCount = st.WaitCount
		}
	}
}
