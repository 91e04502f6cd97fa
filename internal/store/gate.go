package store

import (
	"math/rand"
	"sync"
	"time"
)

// gate はストア可用性のゲート。
// 接続系エラーを観測すると指数バックオフで再試行期限を設定し、
// 期限前の呼び出しは即座に失敗させる（アカウンティング経路をブロックしない）。
type gate struct {
	base   time.Duration
	max    time.Duration
	jitter float64

	mu      sync.Mutex
	attempt int
	retryAt time.Time
	rnd     *rand.Rand
}

func newGate(base, max time.Duration, jitter float64) *gate {
	return &gate{
		base:   base,
		max:    max,
		jitter: jitter,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// allow はストア呼び出しの可否を返す。
// 不可の場合は残りクールダウン時間を返す。
func (g *gate) allow() (time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	remaining := time.Until(g.retryAt)
	if remaining > 0 {
		return remaining, false
	}
	return 0, true
}

// success は呼び出し成功を記録し、バックオフ状態をリセットする。
func (g *gate) success() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempt = 0
	g.retryAt = time.Time{}
}

// failure は接続失敗を記録し、次回試行までの遅延を返す。
func (g *gate) failure() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempt++
	delay := g.delayFor(g.attempt)
	g.retryAt = time.Now().Add(delay)
	return delay
}

// delayFor は delay = min(max, base * 2^(attempt-1)) ± jitter% を計算する。
// ジッタ適用後も上限を超えない。
func (g *gate) delayFor(attempt int) time.Duration {
	delay := g.base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= g.max {
			delay = g.max
			break
		}
	}
	if g.jitter > 0 {
		f := 1 + g.jitter*(2*g.rnd.Float64()-1)
		delay = time.Duration(float64(delay) * f)
	}
	if delay > g.max {
		delay = g.max
	}
	if delay < g.base {
		delay = g.base
	}
	return delay
}
