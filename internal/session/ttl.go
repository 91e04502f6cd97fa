package session

import "time"

// TTLPolicy はセッションレコードとインデックスのTTL方針を保持する。
// Index > Max の関係が前提（レコードの生存が鮮度判定の唯一の根拠）。
type TTLPolicy struct {
	Default time.Duration // Interim間隔が不明な場合のTTL
	Max     time.Duration // TTLの絶対上限
	Margin  time.Duration // Interim由来TTLへの加算マージン
	Index   time.Duration // インデックス集合のTTL（touchごとに更新）
}

// SessionTTL はAcct-Interim-Interval（秒）からセッションTTLを計算する。
// ttl = max(Default, interval*2 + Margin)、上限Max。
// Interimを1周期落としただけでセッションを死亡扱いにしない。
func (p TTLPolicy) SessionTTL(interimInterval uint32) time.Duration {
	ttl := p.Default
	if interimInterval > 0 {
		derived := 2*time.Duration(interimInterval)*time.Second + p.Margin
		if derived > ttl {
			ttl = derived
		}
	}
	if ttl > p.Max {
		ttl = p.Max
	}
	return ttl
}
