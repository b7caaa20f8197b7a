package config

import (
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Option 调整 viper 实例（默认值、额外搜索路径等）
type Option func(v *viper.Viper)

// WithPaths 追加配置文件搜索路径
func WithPaths(paths ...string) Option {
	return func(v *viper.Viper) {
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}
}

// WithDefaults 设置默认值，key 使用点分形式，例如 "http.rate"
func WithDefaults(defaults map[string]interface{}) Option {
	return func(v *viper.Viper) {
		for k, val := range defaults {
			v.SetDefault(k, val)
		}
	}
}

// Load 读取 config/{service}.yaml 并解析到 out，不监听变更
func Load(service string, out interface{}, opts ...Option) (*viper.Viper, error) {
	v := newViper(service, opts...)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(out); err != nil {
		return nil, err
	}
	log.Printf("[%s] config loaded from %s", service, v.ConfigFileUsed())
	return v, nil
}

// LoadAndWatch 在 Load 的基础上监听文件变更，热更新到 out
func LoadAndWatch(service string, out interface{}, opts ...Option) (*viper.Viper, error) {
	v, err := Load(service, out, opts...)
	if err != nil {
		return nil, err
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("[%s] config file changed: %s", service, e.Name)

		if err := v.Unmarshal(out); err != nil {
			log.Printf("[%s] reload config error: %v", service, err)
			return
		}
		log.Printf("[%s] config reloaded OK", service)
	})

	return v, nil
}

func newViper(service string, opts ...Option) *viper.Viper {
	v := viper.New()
	// 约定：config/{service}.yaml
	v.SetConfigName(service)
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 环境变量覆盖，例如 P2P_SERVICE_HTTP_RATE 覆盖 http.rate
	v.SetEnvPrefix(EnvPrefix(service))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, opt := range opts {
		opt(v)
	}
	return v
}

// EnvPrefix "p2p-service" -> "P2P_SERVICE"
func EnvPrefix(service string) string {
	return strings.ToUpper(strings.ReplaceAll(service, "-", "_"))
}
