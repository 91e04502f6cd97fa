package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config はアプリケーション設定を保持する
type Config struct {
	// Valkey接続設定
	RedisHost string `envconfig:"REDIS_HOST" required:"true"`
	RedisPort string `envconfig:"REDIS_PORT" required:"true"`
	RedisPass string `envconfig:"REDIS_PASS"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`

	// RADIUS設定
	RadiusSecret string `envconfig:"RADIUS_SECRET"`
	ListenAddr   string `envconfig:"LISTEN_ADDR" default:":1813"`

	// メトリクス設定
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":2112"`

	// セッションTTLポリシー
	SessionTTL       time.Duration `envconfig:"SESSION_TTL" default:"1h"`
	SessionTTLMax    time.Duration `envconfig:"SESSION_TTL_MAX" default:"24h"`
	SessionTTLMargin time.Duration `envconfig:"SESSION_TTL_MARGIN" default:"60s"`
	IndexTTL         time.Duration `envconfig:"INDEX_TTL" default:"25h"`

	// Janitor設定（ユーザー毎、Interim何回に1回スイープするか）
	JanitorEvery int `envconfig:"JANITOR_EVERY" default:"10"`

	// 再接続バックオフ設定
	ReconnectBase   time.Duration `envconfig:"RECONNECT_BASE" default:"500ms"`
	ReconnectMax    time.Duration `envconfig:"RECONNECT_MAX" default:"30s"`
	ReconnectJitter float64       `envconfig:"RECONNECT_JITTER" default:"0.2"`

	// ログ設定
	LogMaskUsername bool `envconfig:"LOG_MASK_USERNAME" default:"true"`
}

// Load は環境変数から設定を読み込む
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は設定値の整合性を確認する。
// インデックスTTLはセッションTTL上限より長くなければならない
// （セッションレコードの生存が鮮度判定の唯一の根拠となるため）。
func (c *Config) Validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SessionTTLMax < c.SessionTTL {
		return fmt.Errorf("SESSION_TTL_MAX (%s) must not be less than SESSION_TTL (%s)", c.SessionTTLMax, c.SessionTTL)
	}
	if c.IndexTTL <= c.SessionTTLMax {
		return fmt.Errorf("INDEX_TTL (%s) must exceed SESSION_TTL_MAX (%s)", c.IndexTTL, c.SessionTTLMax)
	}
	if c.JanitorEvery < 1 {
		return fmt.Errorf("JANITOR_EVERY must be at least 1, got %d", c.JanitorEvery)
	}
	if c.ReconnectBase <= 0 || c.ReconnectMax < c.ReconnectBase {
		return fmt.Errorf("invalid reconnect backoff range: base=%s max=%s", c.ReconnectBase, c.ReconnectMax)
	}
	if c.ReconnectJitter < 0 || c.ReconnectJitter >= 1 {
		return fmt.Errorf("RECONNECT_JITTER must be in [0,1), got %g", c.ReconnectJitter)
	}
	return nil
}

// ValkeyAddr はValkey接続アドレスを "host:port" 形式で返す
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
