// Package session はオンラインセッション状態の管理を提供する。
package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ali-Mohammed/openRadius-sub017/internal/store"
)

// manager はManagerインターフェースの実装。
// 複数キー更新（レコード + インデックス2種 + カウンタ）は意図的に
// 非アトミック。集合としての整合性はJanitorスイープで収束させる。
type manager struct {
	client *store.Client
	ttl    TTLPolicy
}

// NewManager は新しいManagerを生成する。
func NewManager(client *store.Client, ttl TTLPolicy) Manager {
	return &manager{client: client, ttl: ttl}
}

// UpdateOnStart はStart受信時のレコード作成とインデックス登録を行う。
// セッションカウンタはレコード新規作成時のみ、ユーザーカウンタは
// インデックスが空からの遷移時のみ加算する。
func (m *manager) UpdateOnStart(ctx context.Context, sess *Session, interimInterval uint32) (*StartResult, error) {
	sessKey := sess.Key()
	userIdx := store.UserIndexKey(sess.Username)

	// 事前状態の読み取り（加算条件の判定用）
	var existsCmd, cardCmd *redis.IntCmd
	_, err := m.client.Pipelined(ctx, func(pipe redis.Pipeliner) {
		existsCmd = pipe.Exists(ctx, sessKey)
		cardCmd = pipe.SCard(ctx, userIdx)
	})
	if err != nil {
		return nil, err
	}

	result := &StartResult{
		AlreadyActive: existsCmd.Val() > 0,
		NewUser:       cardCmd.Val() == 0,
		TTL:           m.ttl.SessionTTL(interimInterval),
	}

	_, err = m.client.Pipelined(ctx, func(pipe redis.Pipeliner) {
		m.writeRecord(ctx, pipe, sess, result.TTL)
		if !result.AlreadyActive {
			pipe.Incr(ctx, store.KeySessionCount)
		}
		if result.NewUser {
			pipe.Incr(ctx, store.KeyUserCount)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateOnInterim はInterim受信時のレコード上書きとTTL更新を行う。
// 再登録は冪等で、カウンタへの影響はない。
func (m *manager) UpdateOnInterim(ctx context.Context, sess *Session, interimInterval uint32) (*InterimResult, error) {
	existed, err := m.client.Exists(ctx, sess.Key())
	if err != nil {
		return nil, err
	}

	_, err = m.client.Pipelined(ctx, func(pipe redis.Pipeliner) {
		m.writeRecord(ctx, pipe, sess, m.ttl.SessionTTL(interimInterval))
	})
	if err != nil {
		return nil, err
	}
	return &InterimResult{WithoutStart: existed == 0}, nil
}

// RemoveOnStop はStop受信時のレコード削除とインデックス除去を行う。
// 削除直前の存在確認でStop二重実行時のカウンタ二重減算を防ぐ。
func (m *manager) RemoveOnStop(ctx context.Context, sess *Session) (*StopResult, error) {
	sessKey := sess.Key()

	existed, err := m.client.Exists(ctx, sessKey)
	if err != nil {
		return nil, err
	}

	_, err = m.client.Pipelined(ctx, func(pipe redis.Pipeliner) {
		pipe.Del(ctx, sessKey)
		pipe.SRem(ctx, store.UserIndexKey(sess.Username), sessKey)
		pipe.SRem(ctx, store.NASIndexKey(sess.NASIPAddress), sessKey)
		if existed > 0 {
			pipe.Decr(ctx, store.KeySessionCount)
		}
	})
	if err != nil {
		return nil, err
	}

	sweep, err := m.Sweep(ctx, sess.Username)
	if err != nil {
		return nil, err
	}
	return &StopResult{Existed: existed > 0, Sweep: *sweep}, nil
}

// TeardownNAS はNAS再起動（Accounting-On/Off）時の一括解放を行う。
// 列挙時点で生存していたメンバー数のみをカウンタから減算する。
// レコードが既に失効していてユーザー名を解決できないメンバーは
// 所属ユーザーインデックスに残るが、次回のスイープで除去される。
func (m *manager) TeardownNAS(ctx context.Context, nasIP string) (*TeardownResult, error) {
	nasIdx := store.NASIndexKey(nasIP)

	members, err := m.client.SMembers(ctx, nasIdx)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		_, err = m.client.Pipelined(ctx, func(pipe redis.Pipeliner) {
			pipe.Del(ctx, nasIdx)
		})
		if err != nil {
			return nil, err
		}
		return &TeardownResult{}, nil
	}

	// 生存確認と所属ユーザー解決をまとめて読む
	existsCmds := make([]*redis.IntCmd, len(members))
	ownerCmds := make([]*redis.StringCmd, len(members))
	_, err = m.client.Pipelined(ctx, func(pipe redis.Pipeliner) {
		for i, key := range members {
			existsCmds[i] = pipe.Exists(ctx, key)
			ownerCmds[i] = pipe.HGet(ctx, key, "username")
		}
	})
	if err != nil {
		return nil, err
	}

	live := 0
	owners := make(map[string][]string)
	for i := range members {
		if existsCmds[i].Val() == 0 {
			continue
		}
		live++
		if username, err := ownerCmds[i].Result(); err == nil && username != "" {
			owners[username] = append(owners[username], members[i])
		}
	}

	_, err = m.client.Pipelined(ctx, func(pipe redis.Pipeliner) {
		for _, key := range members {
			pipe.Del(ctx, key)
		}
		for username, keys := range owners {
			pipe.SRem(ctx, store.UserIndexKey(username), keys)
		}
		pipe.Del(ctx, nasIdx)
		if live > 0 {
			pipe.DecrBy(ctx, store.KeySessionCount, int64(live))
		}
	})
	if err != nil {
		return nil, err
	}

	result := &TeardownResult{Members: len(members), Live: live}
	for username := range owners {
		sweep, err := m.Sweep(ctx, username)
		if err != nil {
			return result, err
		}
		if sweep.UserOffline {
			result.UsersOffline = append(result.UsersOffline, username)
		}
	}
	return result, nil
}

// Get はセッションレコードを取得する。
func (m *manager) Get(ctx context.Context, nasIP, sessionID string) (*Session, error) {
	raw, err := m.client.HGetAll(ctx, store.SessionKey(nasIP, sessionID))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var sess Session
	if err := store.MapToStruct(raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// writeRecord はレコード上書き・TTL更新・インデックス再登録のコマンドを
// パイプラインに積む。StartとInterimで共通。
func (m *manager) writeRecord(ctx context.Context, pipe redis.Pipeliner, sess *Session, ttl time.Duration) {
	sessKey := sess.Key()
	userIdx := store.UserIndexKey(sess.Username)
	nasIdx := store.NASIndexKey(sess.NASIPAddress)

	pipe.HSet(ctx, sessKey, store.StructToMap(sess))
	pipe.Expire(ctx, sessKey, ttl)
	pipe.SAdd(ctx, userIdx, sessKey)
	pipe.Expire(ctx, userIdx, m.ttl.Index)
	pipe.SAdd(ctx, nasIdx, sessKey)
	pipe.Expire(ctx, nasIdx, m.ttl.Index)
	pipe.SAdd(ctx, store.KeyOnlineUsers, sess.Username)
}
