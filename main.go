// Package main はRADIUS Accountingオンラインセッショントラッカーのエントリーポイント。
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ali-Mohammed/openRadius-sub017/internal/acct"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/config"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/metrics"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/server"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/session"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/store"
)

func main() {
	// 1. 環境変数読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. ロガー初期化（JSON形式、INFO以上）
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With("app", "session-tracker")
	slog.SetDefault(logger)

	slog.Info("session-tracker starting",
		"listen_addr", cfg.ListenAddr,
		"metrics_addr", cfg.MetricsAddr,
	)

	// 3. Valkeyクライアント初期化
	valkeyClient, err := store.NewClient(cfg)
	if err != nil {
		slog.Error("valkey connection failed",
			"event_id", "VALKEY_CONN_ERR",
			"error", err,
		)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	slog.Info("valkey connected", "addr", cfg.ValkeyAddr())

	// 4. Session層生成
	sessionManager := session.NewManager(valkeyClient, session.TTLPolicy{
		Default: cfg.SessionTTL,
		Max:     cfg.SessionTTLMax,
		Margin:  cfg.SessionTTLMargin,
		Index:   cfg.IndexTTL,
	})

	// 5. Acct層生成
	processor := acct.NewProcessor(sessionManager, cfg.JanitorEvery, cfg.LogMaskUsername)

	// 6. RADIUS Secret解決
	secretSource := server.NewSecretSource(valkeyClient, cfg.RadiusSecret)

	// 7. RADIUSハンドラ
	handler := server.NewHandler(processor)

	// 8. UDPサーバー
	srv := server.NewServer(cfg.ListenAddr, handler, secretSource)

	// 9. サーバー起動（goroutine）
	go func() {
		slog.Info("radius server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil {
			slog.Error("radius server error", "error", err)
		}
	}()

	// 10. メトリクスHTTPサーバー起動（goroutine）
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		slog.Info("metrics server listening", "addr", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "error", err)
		}
	}()

	// 11. シグナル待機 → Graceful Shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigCh
	slog.Info("signal received, shutting down", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("radius server shutdown error", "error", err)
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		slog.Warn("metrics server shutdown error", "error", err)
	}

	slog.Info("session-tracker stopped")
}
