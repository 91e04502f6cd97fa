package store

import "errors"

var (
	// ErrStoreUnavailable はValkeyへの接続が利用不可能な場合のエラー
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrKeyNotFound は指定されたキーが存在しない場合のエラー
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnexpectedReply はValkey応答が期待した型・形式でない場合のエラー
	ErrUnexpectedReply = errors.New("unexpected store reply")
)
