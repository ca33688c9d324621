package scores

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/mcp-training/tilemerge/game/service"
)

// RedisStore ranks entries in a sorted set at key and keeps the entry
// bodies in a hash at key + ":entries". Equal scores straddling the limit
// may not follow record order.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to addr and checks the connection
func NewRedisStore(ctx context.Context, addr, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisStoreWithClient(client, key), nil
}

// NewRedisStoreWithClient wraps an existing client. The store takes
// ownership and closes it in Close.
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) entriesKey() string {
	return r.key + ":entries"
}

func (r *RedisStore) Record(ctx context.Context, entry *service.ScoreEntry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.entriesKey(), entry.ID, body)
		pipe.ZAdd(ctx, r.key, redis.Z{Score: float64(entry.Score), Member: entry.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("record score: %w", err)
	}
	return nil
}

func (r *RedisStore) Top(ctx context.Context, limit int) ([]*service.ScoreEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := r.client.ZRevRange(ctx, r.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("rank scores: %w", err)
	}
	entries := []*service.ScoreEntry{}
	if len(ids) == 0 {
		return entries, nil
	}

	bodies, err := r.client.HMGet(ctx, r.entriesKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	for i, raw := range bodies {
		s, ok := raw.(string)
		if !ok {
			// ranked without a body; skip rather than fail the whole board
			continue
		}
		var e service.ScoreEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("decode score %s: %w", ids[i], err)
		}
		entries = append(entries, &e)
	}
	// Redis breaks score ties by member; reorder them by record time
	sort.SliceStable(entries, func(i, j int) bool {
		return ranksAbove(entries[i], entries[j])
	})
	return entries, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
