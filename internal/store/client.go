package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// GetClientSecret は指定されたIPのShared Secretを取得する。
// client:{ip}ハッシュのsecretフィールドを参照し、未登録の場合は
// 空文字列とnilを返す。
func (c *Client) GetClientSecret(ctx context.Context, ip string) (string, error) {
	if err := c.begin(); err != nil {
		return "", err
	}
	secret, err := c.rdb.HGet(ctx, ClientKey(ip), "secret").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.gate.success()
			return "", nil
		}
		return "", c.finish(err)
	}
	c.gate.success()
	return secret, nil
}
