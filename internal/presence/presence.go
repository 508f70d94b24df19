// Package presence tracks which clients are currently connected to a
// coordinator in Redis, so a deployment with multiple gateway processes in
// front of one coordinator can answer "who's online" without routing the
// question through the coordinator's own in-memory connected set.
package presence

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tablesync/internal/sheet"
)

// Tracker records and queries connected-client presence.
type Tracker interface {
	Join(ctx context.Context, coordinatorID string, clientID sheet.ClientID, groupID sheet.GroupID, ttl time.Duration) error
	Coordinators(ctx context.Context) ([]string, error)
	Alive(ctx context.Context, coordinatorID string) ([]Member, error)
}

// Member is one entry of an Alive query result.
type Member struct {
	ClientID sheet.ClientID
	GroupID  sheet.GroupID
}

type redisTracker struct {
	rdb *redis.Client
}

// NewRedisTracker returns a Tracker backed by rdb.
func NewRedisTracker(rdb *redis.Client) Tracker {
	return &redisTracker{rdb: rdb}
}

// Join refreshes clientID's membership in coordinatorID's room with the
// given ttl, recording its current groupID. Calling Join again before
// expiry is how a live client renews its presence.
func (t *redisTracker) Join(ctx context.Context, coordinatorID string, clientID sheet.ClientID, groupID sheet.GroupID, ttl time.Duration) error {
	tx := t.rdb.TxPipeline()
	expireAt := time.Now().Add(ttl).Unix()
	tx.ZAdd(ctx, roomKey(coordinatorID), redis.Z{Score: float64(expireAt), Member: string(clientID)})
	tx.HSet(ctx, namesKey(coordinatorID), string(clientID), string(groupID))
	_, err := tx.Exec(ctx)
	return err
}

// Coordinators lists the coordinator room keys with at least one historical
// member, for an operator dashboard to enumerate active rooms.
func (t *redisTracker) Coordinators(ctx context.Context) ([]string, error) {
	var ids []string
	iter := t.rdb.Scan(ctx, 0, "tablesync:room:*", 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if strings.Contains(k, ":groups:") {
			continue
		}
		id := strings.TrimPrefix(k, "tablesync:room:")
		if id != "" {
			ids = append(ids, id)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Alive evicts expired members of coordinatorID's room and returns those
// still live.
func (t *redisTracker) Alive(ctx context.Context, coordinatorID string) ([]Member, error) {
	now := time.Now().Unix()

	luaScript := `
	local expired = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
	if #expired > 0 then
		redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
		redis.call("HDEL", KEYS[2], unpack(expired))
	end
	return #expired
	`
	script := redis.NewScript(luaScript)
	_, err := script.Run(ctx, t.rdb, []string{roomKey(coordinatorID), namesKey(coordinatorID)}, now).Int()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	aliveIDs, err := t.rdb.ZRangeByScore(ctx, roomKey(coordinatorID), &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(now, 10),
		Max: "+inf",
	}).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	if len(aliveIDs) == 0 {
		return nil, nil
	}

	groups, err := t.rdb.HMGet(ctx, namesKey(coordinatorID), aliveIDs...).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	members := make([]Member, 0, len(aliveIDs))
	for i, id := range aliveIDs {
		group := ""
		if groups[i] != nil {
			group, _ = groups[i].(string)
		}
		members = append(members, Member{ClientID: sheet.ClientID(id), GroupID: sheet.GroupID(group)})
	}
	return members, nil
}
