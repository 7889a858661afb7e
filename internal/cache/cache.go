// Package cache publishes game action records to Redis for an external
// historian to consume. The match itself never reads them back; when Redis
// is not configured the publisher stays nil and every call is a no-op.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Yamazak-mc/algo-cg/engine"
)

// Rdb is the shared Redis client, nil unless Init succeeded.
var Rdb *redis.Client

// GameActionQueueKey is the list the historian drains.
const GameActionQueueKey = "algo:game_actions"

// GameActionRecord captures one processed game event for the historian.
type GameActionRecord struct {
	GameID      uuid.UUID        `json:"gameId"`
	ActionIndex uint64           `json:"actionIndex"`
	Actor       engine.PlayerID  `json:"actor,omitempty"`
	Event       engine.GameEvent `json:"event"`
	Timestamp   int64            `json:"timestamp"`
}

// Init connects the shared client using REDIS_ADDR and REDIS_PASSWORD. An
// empty REDIS_ADDR leaves the client nil, which disables publishing.
func Init(ctx context.Context) error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// PublishGameAction pushes the record onto the historian queue and announces
// it on a per-game channel.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := Rdb.LPush(ctx, GameActionQueueKey, raw).Err(); err != nil {
		return fmt.Errorf("lpush action record: %w", err)
	}
	channel := fmt.Sprintf("algo:game:%s", rec.GameID)
	if err := Rdb.Publish(ctx, channel, raw).Err(); err != nil {
		return fmt.Errorf("publish action record: %w", err)
	}
	return nil
}
