package session

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/Ali-Mohammed/openRadius-sub017/internal/store"
)

// Sweep は指定ユーザーのインデックスを実態と突き合わせる。
// TTL失効したままStopが届かなかったセッションのインデックス残骸を除去する
// 唯一の機構。コストはインデックス要素数に比例するため、呼び出し側で
// スロットリングする（Stop時は毎回、Interim時はN回に1回）。
func (m *manager) Sweep(ctx context.Context, username string) (*SweepResult, error) {
	userIdx := store.UserIndexKey(username)

	members, err := m.client.SMembers(ctx, userIdx)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		offline, err := m.markUserOffline(ctx, username)
		if err != nil {
			return nil, err
		}
		return &SweepResult{UserOffline: offline}, nil
	}

	// レコード生存確認（一括）
	existsCmds := make([]*redis.IntCmd, len(members))
	_, err = m.client.Pipelined(ctx, func(pipe redis.Pipeliner) {
		for i, key := range members {
			existsCmds[i] = pipe.Exists(ctx, key)
		}
	})
	if err != nil {
		return nil, err
	}

	var stale []string
	for i, key := range members {
		if existsCmds[i].Val() == 0 {
			stale = append(stale, key)
		}
	}

	result := &SweepResult{Live: len(members) - len(stale), Pruned: len(stale)}
	if len(stale) > 0 {
		_, err = m.client.Pipelined(ctx, func(pipe redis.Pipeliner) {
			pipe.SRem(ctx, userIdx, stale)
			for _, key := range stale {
				if nasIP, _, ok := store.SplitSessionKey(key); ok {
					pipe.SRem(ctx, store.NASIndexKey(nasIP), key)
				}
			}
			pipe.DecrBy(ctx, store.KeySessionCount, int64(len(stale)))
		})
		if err != nil {
			return nil, err
		}
	}

	if result.Live == 0 {
		offline, err := m.markUserOffline(ctx, username)
		if err != nil {
			return result, err
		}
		result.UserOffline = offline
	}
	return result, nil
}

// markUserOffline はユーザーをオンライン集合から外し、空インデックスを削除する。
// ユーザーカウンタはオンライン集合から実際に除去できた場合のみ減算する
// （重複減算の防止）。
func (m *manager) markUserOffline(ctx context.Context, username string) (bool, error) {
	var sremCmd *redis.IntCmd
	_, err := m.client.Pipelined(ctx, func(pipe redis.Pipeliner) {
		sremCmd = pipe.SRem(ctx, store.KeyOnlineUsers, username)
		pipe.Del(ctx, store.UserIndexKey(username))
	})
	if err != nil {
		return false, err
	}
	if sremCmd.Val() == 0 {
		return false, nil
	}
	_, err = m.client.Pipelined(ctx, func(pipe redis.Pipeliner) {
		pipe.Decr(ctx, store.KeyUserCount)
	})
	if err != nil {
		return true, err
	}
	return true, nil
}
