package acct

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/Ali-Mohammed/openRadius-sub017/internal/config"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/radius"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/session"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/store"
)

func newTestConfig(addr string) *config.Config {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return &config.Config{
				RedisHost:       addr[:i],
				RedisPort:       addr[i+1:],
				ReconnectBase:   100 * time.Millisecond,
				ReconnectMax:    time.Second,
				ReconnectJitter: 0,
			}
		}
	}
	return &config.Config{RedisHost: addr, RedisPort: "6379"}
}

func setupProcessor(t *testing.T, janitorEvery int) (*miniredis.Miniredis, *Processor) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := newTestConfig(mr.Addr())
	client, err := store.NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	mgr := session.NewManager(client, session.TTLPolicy{
		Default: time.Hour,
		Max:     24 * time.Hour,
		Margin:  60 * time.Second,
		Index:   25 * time.Hour,
	})
	return mr, NewProcessor(mgr, janitorEvery, true)
}

func startAttrs(username, sessionID string) *radius.AccountingAttributes {
	return &radius.AccountingAttributes{
		AcctStatusType: radius.AcctStatusTypeStart,
		AcctSessionID:  sessionID,
		UserName:       username,
		NasIPAddress:   "192.168.1.1",
	}
}

func TestNoopMissingSessionID(t *testing.T) {
	mr, proc := setupProcessor(t, 10)
	ctx := context.Background()

	attrs := &radius.AccountingAttributes{
		AcctStatusType: radius.AcctStatusTypeStart,
		UserName:       "alice",
	}
	if err := proc.ProcessStart(ctx, attrs, "192.168.1.1", "trace-1"); err != nil {
		t.Fatalf("ProcessStart failed: %v", err)
	}

	// ストア操作は一切発行されない
	if len(mr.Keys()) != 0 {
		t.Errorf("keys = %v, want none", mr.Keys())
	}
}

func TestNoopMissingUsername(t *testing.T) {
	mr, proc := setupProcessor(t, 10)
	ctx := context.Background()

	attrs := &radius.AccountingAttributes{
		AcctStatusType: radius.AcctStatusTypeStop,
		AcctSessionID:  "sess-001",
	}
	if err := proc.ProcessStop(ctx, attrs, "192.168.1.1", "trace-1"); err != nil {
		t.Fatalf("ProcessStop failed: %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Errorf("keys = %v, want none", mr.Keys())
	}
}

func TestNasAddressFallback(t *testing.T) {
	attrs := &radius.AccountingAttributes{NasIPAddress: "192.168.1.1"}
	if got := nasAddress(attrs, "10.0.0.1"); got != "192.168.1.1" {
		t.Errorf("nasAddress = %q, want attribute value", got)
	}
	attrs.NasIPAddress = ""
	if got := nasAddress(attrs, "10.0.0.1"); got != "10.0.0.1" {
		t.Errorf("nasAddress = %q, want source IP fallback", got)
	}
}

func TestShouldSweepCadence(t *testing.T) {
	_, proc := setupProcessor(t, 3)

	want := []bool{false, false, true, false, false, true}
	for i, w := range want {
		if got := proc.shouldSweep("alice"); got != w {
			t.Errorf("shouldSweep call %d = %v, want %v", i+1, got, w)
		}
	}
	// 別ユーザーは独立したカウンタを持つ
	if proc.shouldSweep("bob") {
		t.Error("shouldSweep(bob) = true on first call")
	}
}

func TestForgetThrottleResetsCadence(t *testing.T) {
	_, proc := setupProcessor(t, 3)

	proc.shouldSweep("alice")
	proc.shouldSweep("alice")
	proc.forgetThrottle("alice")

	if proc.shouldSweep("alice") {
		t.Error("shouldSweep = true right after reset, want false")
	}
}

func TestBuildSessionGigawords(t *testing.T) {
	_, proc := setupProcessor(t, 10)

	attrs := &radius.AccountingAttributes{
		AcctStatusType:  radius.AcctStatusTypeInterim,
		AcctSessionID:   "sess-001",
		UserName:        "alice",
		NasIPAddress:    "192.168.1.1",
		InputOctets:     100,
		InputGigawords:  1,
		OutputOctets:    500,
		OutputGigawords: 2,
	}
	sess := proc.buildSession(attrs, "192.168.1.1", session.EventKindInterim)

	if sess.InputBytes != 4294967396 {
		t.Errorf("InputBytes = %d, want 4294967396", sess.InputBytes)
	}
	if sess.OutputBytes != 8589935092 {
		t.Errorf("OutputBytes = %d, want 8589935092", sess.OutputBytes)
	}
}

func TestBuildSessionStartedAt(t *testing.T) {
	_, proc := setupProcessor(t, 10)

	attrs := startAttrs("alice", "sess-001")
	attrs.SessionTime = 300
	before := time.Now().Unix()
	sess := proc.buildSession(attrs, "192.168.1.1", session.EventKindInterim)
	after := time.Now().Unix()

	if sess.StartedAt < before-300 || sess.StartedAt > after-300 {
		t.Errorf("StartedAt = %d, want now-300", sess.StartedAt)
	}
}
