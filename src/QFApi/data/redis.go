package data

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/commonsfund/quadfund/src/QFApi/types"
)

const (
	noncePrefix = "nonce:"
	streamAudit = "quadfund.audit"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

func SetNonce(ctx context.Context, rdb *redis.Client, addr, nonce string) error {
	return rdb.Set(ctx, noncePrefix+addr, nonce, 5*time.Minute).Err()
}

func GetNonce(ctx context.Context, rdb *redis.Client, addr string) (string, error) {
	return rdb.Get(ctx, noncePrefix+addr).Result()
}

func DelNonce(ctx context.Context, rdb *redis.Client, addr string) {
	rdb.Del(ctx, noncePrefix+addr)
}

// PublishAudit appends a committed audit event to the observer stream.
// Consumers follow the stream with XREAD; the DB log remains the source
// of truth.
func PublishAudit(ctx context.Context, rdb *redis.Client, ev types.AuditEvent) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamAudit,
		Values: map[string]interface{}{
			"id":        strconv.FormatUint(ev.ID, 10),
			"kind":      ev.Kind,
			"actor":     ev.Actor,
			"proposal":  strconv.FormatUint(ev.ProposalID, 10),
			"milestone": strconv.FormatInt(int64(ev.MilestoneSeq), 10),
			"units":     strconv.FormatUint(ev.Units, 10),
			"cost":      strconv.FormatUint(ev.Cost, 10),
			"hash":      ev.Hash,
		},
	}).Result()
	return err
}
