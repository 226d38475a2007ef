package ban

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/order-tracker/internal/redissvc"
	"go.uber.org/zap"
)

const (
	DailyBanLogKey = "ratelimit:banlog:daily"
	strikePrefix   = "ratelimit:strikes:"
	banPrefix      = "ratelimit:ban:"
)

var (
	maxStrikes  = 20
	banDuration = 15 * time.Minute

	rdb    *redis.Client
	ctx    context.Context
	logger = zap.NewNop()
)

// SetRedisService enables banning. Without it every check passes.
func SetRedisService(rs *redissvc.RedisService) {
	rdb = rs.Rdb()
	ctx = rs.Ctx()
}

func SetLogger(l *zap.Logger) {
	logger = l
}

func Configure(strikes int, duration time.Duration) {
	maxStrikes = strikes
	banDuration = duration
}

func Enabled() bool {
	return rdb != nil
}

// IsBanned reports whether target is serving a ban.
func IsBanned(reqCtx context.Context, target string) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	n, err := rdb.Exists(reqCtx, banPrefix+target).Result()
	if err != nil {
		return false, fmt.Errorf("ban lookup for %s: %w", target, err)
	}
	return n > 0, nil
}

// AddStrike counts a rate limit violation of target on route. Strikes expire
// after the ban duration; reaching the maximum bans target for that long.
func AddStrike(reqCtx context.Context, target, route string) (bool, error) {
	if rdb == nil {
		return false, nil
	}

	key := strikePrefix + target
	strikes, err := rdb.Incr(reqCtx, key).Result()
	if err != nil {
		return false, fmt.Errorf("strike for %s: %w", target, err)
	}
	if strikes == 1 {
		_ = rdb.Expire(reqCtx, key, banDuration).Err()
	}
	if strikes < int64(maxStrikes) {
		return false, nil
	}

	if err := rdb.Set(reqCtx, banPrefix+target, strikes, banDuration).Err(); err != nil {
		return false, fmt.Errorf("ban %s: %w", target, err)
	}
	_ = rdb.Del(reqCtx, key).Err()

	logger.Warn("client banned",
		zap.String("target", target),
		zap.String("route", route),
		zap.Int64("strikes", strikes),
		zap.Duration("duration", banDuration),
	)
	logBanEvent(reqCtx, target, route, int(strikes))
	return true, nil
}

type BanLogEntry struct {
	Target  string    `json:"target"`
	Route   string    `json:"route"`
	Strikes int       `json:"strikes"`
	Time    time.Time `json:"time"`
}

func logBanEvent(reqCtx context.Context, target, route string, strikes int) {
	entry := BanLogEntry{
		Target:  target,
		Route:   route,
		Strikes: strikes,
		Time:    time.Now(),
	}
	data, _ := json.Marshal(entry)
	_ = rdb.RPush(reqCtx, DailyBanLogKey, data).Err()
}

// StartDailyBanSummary writes the summary once a day at 23:59 until the
// service context is done.
func StartDailyBanSummary() {
	if rdb == nil {
		return
	}
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
		if now.After(next) {
			next = next.Add(24 * time.Hour)
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			SendDailyBanSummary()
		}
	}
}

type Summary struct {
	Total    int
	ByRoute  map[string]int
	ByTarget map[string]int
}

// SendDailyBanSummary drains the ban log and reports it as one log entry.
func SendDailyBanSummary() Summary {
	summary := Summary{ByRoute: map[string]int{}, ByTarget: map[string]int{}}
	if rdb == nil {
		return summary
	}

	entries, err := rdb.LRange(ctx, DailyBanLogKey, 0, -1).Result()
	if err != nil || len(entries) == 0 {
		return summary
	}
	_ = rdb.Del(ctx, DailyBanLogKey).Err() // clear after reading

	for _, item := range entries {
		var entry BanLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err == nil {
			summary.Total++
			summary.ByRoute[entry.Route]++
			summary.ByTarget[entry.Target]++
		}
	}

	logger.Info("daily ban summary",
		zap.Int("total", summary.Total),
		zap.Any("by_route", summary.ByRoute),
		zap.Any("by_target", summary.ByTarget),
	)
	return summary
}
