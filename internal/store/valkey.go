// Package store はValkeyへのデータアクセスを提供する。
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/redis/go-redis/v9"

	"github.com/Ali-Mohammed/openRadius-sub017/internal/config"
)

// Client はValkeyクライアントをラップし、可用性ゲートを適用する。
// ワーカー（接続）ごとに1つ生成し、プロセス全体の暗黙シングルトンは持たない。
type Client struct {
	rdb  *redis.Client
	gate *gate
}

// NewClient は新しいClientを生成し、PINGで接続を確認する。
func NewClient(cfg *config.Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.ValkeyAddr(),
		Password:     cfg.RedisPass,
		DB:           cfg.RedisDB,
		DialTimeout:  config.ValkeyConnectTimeout,
		ReadTimeout:  config.ValkeyCommandTimeout,
		WriteTimeout: config.ValkeyCommandTimeout,
		PoolSize:     config.ValkeyPoolSize,
		MinIdleConns: config.ValkeyMinIdleConns,
		// 再試行はゲート側で制御するため無効化する
		MaxRetries: -1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), config.ValkeyConnectTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &Client{
		rdb:  rdb,
		gate: newGate(cfg.ReconnectBase, cfg.ReconnectMax, cfg.ReconnectJitter),
	}, nil
}

// Close は接続を閉じる。
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping は接続を確認する。
func (c *Client) Ping(ctx context.Context) error {
	return c.finish(c.rdb.Ping(ctx).Err())
}

// Pipelined は複数コマンドを1回のネットワークラウンドトリップで実行する。
// クールダウン中はコマンドを発行せず即座にErrStoreUnavailableを返す。
func (c *Client) Pipelined(ctx context.Context, fn func(pipe redis.Pipeliner)) ([]redis.Cmder, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	cmds, err := c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		fn(pipe)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return cmds, c.finish(err)
	}
	c.gate.success()
	return cmds, nil
}

// SMembers は集合の全メンバーを取得する。
func (c *Client) SMembers(ctx context.Context, key string) ([]string, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	members, err := c.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, c.finish(err)
	}
	c.gate.success()
	return members, nil
}

// SCard は集合の要素数を取得する。
func (c *Client) SCard(ctx context.Context, key string) (int64, error) {
	if err := c.begin(); err != nil {
		return 0, err
	}
	n, err := c.rdb.SCard(ctx, key).Result()
	if err != nil {
		return 0, c.finish(err)
	}
	c.gate.success()
	return n, nil
}

// Exists は存在するキーの数を返す。
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	if err := c.begin(); err != nil {
		return 0, err
	}
	n, err := c.rdb.Exists(ctx, keys...).Result()
	if err != nil {
		return 0, c.finish(err)
	}
	c.gate.success()
	return n, nil
}

// HGetAll はハッシュの全フィールドを取得する。
// キー未存在時はErrKeyNotFoundを返す。
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	m, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, c.finish(err)
	}
	c.gate.success()
	if len(m) == 0 {
		return nil, ErrKeyNotFound
	}
	return m, nil
}

// GetString は文字列キーの値を取得する。未存在時は空文字列とnilを返す。
func (c *Client) GetString(ctx context.Context, key string) (string, error) {
	if err := c.begin(); err != nil {
		return "", err
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.gate.success()
			return "", nil
		}
		return "", c.finish(err)
	}
	c.gate.success()
	return val, nil
}

// GetInt は整数カウンタの値を取得する。未存在時は0とnilを返す。
func (c *Client) GetInt(ctx context.Context, key string) (int64, error) {
	if err := c.begin(); err != nil {
		return 0, err
	}
	n, err := c.rdb.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.gate.success()
			return 0, nil
		}
		return 0, c.finish(err)
	}
	c.gate.success()
	return n, nil
}

// begin はゲートのクールダウン状態を確認する。
func (c *Client) begin() error {
	if remaining, ok := c.gate.allow(); !ok {
		return fmt.Errorf("%w: in backoff cooldown, retry in %s", ErrStoreUnavailable, remaining.Round(1e6))
	}
	return nil
}

// finish はコマンド結果をゲートに反映し、エラーを分類して返す。
// 接続系エラーはバックオフを進め、プロトコルエラーはゲートに影響しない。
func (c *Client) finish(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		c.gate.success()
		return nil
	}
	if IsConnectionError(err) {
		delay := c.gate.failure()
		return fmt.Errorf("%w: %v (next attempt in %s)", ErrStoreUnavailable, err, delay.Round(1e6))
	}
	return fmt.Errorf("%w: %v", ErrUnexpectedReply, err)
}

// IsConnectionError は接続関連のエラーかどうかを判定する。
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// サーバー側切断はEOFとして観測される
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	return false
}
