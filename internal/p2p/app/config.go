package app

type Cfg struct {
	Name     string   `yaml:"name" mapstructure:"name"`
	LogLevel string   `yaml:"log_level" mapstructure:"log_level"`
	LogFile  string   `yaml:"log_file" mapstructure:"log_file"`
	HTTP     HTTP     `yaml:"http" mapstructure:"http"`
	Db       DBConfig `yaml:"db" mapstructure:"db"`
	Redis    Redis    `yaml:"redis" mapstructure:"redis"`
	OTel     OTel     `yaml:"otel" mapstructure:"otel"`
	Session  Session  `yaml:"session" mapstructure:"session"`
	Cities   Cities   `yaml:"cities" mapstructure:"cities"`
	Wallet   Wallet   `yaml:"wallet" mapstructure:"wallet"`
	Feed     Feed     `yaml:"feed" mapstructure:"feed"`
	Trades   Trades   `yaml:"trades" mapstructure:"trades"`
}

type HTTP struct {
	Addr          string  `yaml:"addr" mapstructure:"addr"`
	Rate          float64 `yaml:"rate" mapstructure:"rate"`
	Burst         int     `yaml:"burst" mapstructure:"burst"`
	SlowRequestMs int     `yaml:"slow_request_ms" mapstructure:"slow_request_ms"`
	Metrics       bool    `yaml:"metrics" mapstructure:"metrics"`
}

// DBConfig source_name 为空时不连库，广告/城市/交易只在内存里
type DBConfig struct {
	Type                   string `yaml:"type" mapstructure:"type"`
	SourceName             string `yaml:"source_name" mapstructure:"source_name"`
	MaxOpenConns           int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" mapstructure:"conn_max_lifetime_minutes"`
	AutoMigrate            bool   `yaml:"auto_migrate" mapstructure:"auto_migrate"`
}

// Redis addr 为空时会话数据放内存
type Redis struct {
	Addr         string `yaml:"addr" mapstructure:"addr"`
	Database     int    `yaml:"db" mapstructure:"db"`
	Auth         string `yaml:"auth" mapstructure:"auth"`
	PoolSize     int    `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int    `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	KeyPrefix    string `yaml:"key_prefix" mapstructure:"key_prefix"`
	TTLHours     int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

type OTel struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr    string `yaml:"addr" mapstructure:"addr"`
}

type Session struct {
	DefaultCity string `yaml:"default_city" mapstructure:"default_city"`
	SeedDemoAds bool   `yaml:"seed_demo_ads" mapstructure:"seed_demo_ads"`
}

type Cities struct {
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds"`
	FetchTimeoutMs  int           `yaml:"fetch_timeout_ms" mapstructure:"fetch_timeout_ms"`
	Breaker         BreakerConfig `yaml:"breaker" mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxRequests         uint32  `yaml:"max_requests" mapstructure:"max_requests"`
	IntervalSeconds     int     `yaml:"interval_seconds" mapstructure:"interval_seconds"`
	TimeoutSeconds      int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	ConsecutiveFailures uint32  `yaml:"consecutive_failures" mapstructure:"consecutive_failures"`
	FailureRate         float64 `yaml:"failure_rate" mapstructure:"failure_rate"`
	MinRequests         uint32  `yaml:"min_requests" mapstructure:"min_requests"`
}

// Wallet rpc_url 为空时没有钱包，连接接口返回 WalletUnavailable
// 账户私钥：private_key 优先，否则从 mnemonic 按 account_index 派生
type Wallet struct {
	RPCURL        string            `yaml:"rpc_url" mapstructure:"rpc_url"`
	PrivateKey    string            `yaml:"private_key" mapstructure:"private_key"`
	Mnemonic      string            `yaml:"mnemonic" mapstructure:"mnemonic"`
	Passphrase    string            `yaml:"passphrase" mapstructure:"passphrase"`
	AccountIndex  uint32            `yaml:"account_index" mapstructure:"account_index"`
	Networks      map[string]string `yaml:"networks" mapstructure:"networks"` // chainID -> rpc
	CallTimeoutMs int               `yaml:"call_timeout_ms" mapstructure:"call_timeout_ms"`
}

type Feed struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Trades 没有数据库时，journal_path 非空就把交易请求写进本地 wal 文件
type Trades struct {
	JournalPath   string `yaml:"journal_path" mapstructure:"journal_path"`
	SyncEachWrite bool   `yaml:"sync_each_write" mapstructure:"sync_each_write"`
}

// defaults 配置文件里没写的项
var defaults = map[string]interface{}{
	"name":                                "p2p-service",
	"log_level":                           "info",
	"http.addr":                           ":8080",
	"http.rate":                           50,
	"http.burst":                          100,
	"http.slow_request_ms":                500,
	"http.metrics":                        true,
	"db.type":                             "mysql",
	"db.max_open_conns":                   20,
	"db.max_idle_conns":                   5,
	"db.conn_max_lifetime_minutes":        30,
	"redis.pool_size":                     20,
	"session.default_city":                "Mumbai",
	"session.seed_demo_ads":               true,
	"cities.cache_ttl_seconds":            300,
	"cities.fetch_timeout_ms":             3000,
	"cities.breaker.max_requests":         1,
	"cities.breaker.interval_seconds":     60,
	"cities.breaker.timeout_seconds":      30,
	"cities.breaker.consecutive_failures": 3,
	"wallet.call_timeout_ms":              10000,
	"feed.enabled":                        true,
}
