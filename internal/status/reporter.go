package status

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"coderoom/internal/models"
	"coderoom/internal/utils"
)

// roomKeyTTL bounds the diagnostic copy only; the in-process room table
// is never evicted.
const roomKeyTTL = 24 * time.Hour

// Reporter mirrors room state into Redis for operator diagnostics. It is
// write-only: nothing is ever read back, and a missing or failing Redis
// never affects room behavior.
type Reporter struct {
	rdb *redis.Client
	log *utils.Logger
}

func NewReporter(redisAddr string, log *utils.Logger) *Reporter {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	return &Reporter{rdb: rdb, log: log}
}

// Publish writes the snapshot under room:<id> with a sliding TTL.
func (rp *Reporter) Publish(ctx context.Context, snap models.RoomStatus) {
	roomKey := "room:" + snap.ID

	err := rp.rdb.HSet(ctx, roomKey, map[string]interface{}{
		"users":     strings.Join(snap.Users, ","),
		"members":   len(snap.Users),
		"language":  snap.Language,
		"codeBytes": snap.CodeBytes,
		"hasRun":    snap.HasRun,
		"updatedAt": time.Now().Format(time.RFC3339),
	}).Err()
	if err != nil {
		rp.log.Warn("room status mirror failed", "room", snap.ID, "error", err.Error())
		return
	}

	rp.rdb.Expire(ctx, roomKey, roomKeyTTL)
}

func (rp *Reporter) Close() error { return rp.rdb.Close() }
