package store

import "strings"

// Valkeyキープレフィックス
const (
	KeyPrefixSession   = "session:"       // アクティブセッション（hash）
	KeyPrefixUserIndex = "user:sessions:" // ユーザー別セッションキー集合
	KeyPrefixNASIndex  = "nas:sessions:"  // NAS別セッションキー集合
	KeyPrefixClient    = "client:"        // RADIUSクライアント設定
)

// グローバルキー
const (
	KeyOnlineUsers  = "online:users"          // オンラインユーザー名集合
	KeySessionCount = "online:count:sessions" // ライブセッション数カウンタ
	KeyUserCount    = "online:count:users"    // オンラインユーザー数カウンタ
)

// SessionKey はセッションレコードのValkeyキーを生成する。
func SessionKey(nasIP, sessionID string) string {
	return KeyPrefixSession + nasIP + ":" + sessionID
}

// UserIndexKey はユーザーインデックスのValkeyキーを生成する。
func UserIndexKey(username string) string {
	return KeyPrefixUserIndex + username
}

// NASIndexKey はNASインデックスのValkeyキーを生成する。
func NASIndexKey(nasIP string) string {
	return KeyPrefixNASIndex + nasIP
}

// ClientKey はRADIUSクライアントのValkeyキーを生成する。
func ClientKey(ip string) string {
	return KeyPrefixClient + ip
}

// SplitSessionKey はセッションキーからNASアドレスとセッションIDを取り出す。
// NAS-IP-AddressはIPv4のためコロンを含まない。
func SplitSessionKey(key string) (nasIP, sessionID string, ok bool) {
	rest, found := strings.CutPrefix(key, KeyPrefixSession)
	if !found {
		return "", "", false
	}
	nasIP, sessionID, found = strings.Cut(rest, ":")
	if !found || nasIP == "" || sessionID == "" {
		return "", "", false
	}
	return nasIP, sessionID, true
}
