package config

import "time"

// Valkey接続設定
const (
	ValkeyConnectTimeout = 3 * time.Second
	ValkeyCommandTimeout = 2 * time.Second
	ValkeyPoolSize       = 10
	ValkeyMinIdleConns   = 2
)

// サーバーシャットダウン設定
const (
	ShutdownTimeout = 5 * time.Second
)
