package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quizarena-service/internal/domain"
)

// LeaderboardCache stores ranked leaderboards in a hash per quiz:
//
//	HSET leaderboard:{quizID} {limit} {json}
//	INCR leaderboard:{quizID}:gen
//
// Submissions bump the generation and drop the hash. A board is written only
// while the generation it was ranked under is still current.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// setIfCurrent: KEYS[1]=hash KEYS[2]=gen ARGV: gen, field, payload, ttl ms.
var setIfCurrent = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[2], ARGV[3])
if tonumber(ARGV[4]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
end
return 1
`)

func NewLeaderboardCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *LeaderboardCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeaderboardCache{client: client, ttl: ttl, log: log}
}

func (c *LeaderboardCache) Get(ctx context.Context, quizID string, limit int) (domain.Leaderboard, bool) {
	data, err := c.client.HGet(ctx, c.key(quizID), strconv.Itoa(limit)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("leaderboard cache read failed", zap.String("quiz_id", quizID), zap.Error(err))
		}
		return domain.Leaderboard{}, false
	}
	var board domain.Leaderboard
	if err := json.Unmarshal(data, &board); err != nil {
		return domain.Leaderboard{}, false
	}
	return board, true
}

// Generation returns the current invalidation counter of the quiz.
func (c *LeaderboardCache) Generation(ctx context.Context, quizID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(quizID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set stores board unless the quiz was invalidated after gen was read.
func (c *LeaderboardCache) Set(ctx context.Context, gen int64, limit int, board domain.Leaderboard) {
	data, err := json.Marshal(board)
	if err != nil {
		return
	}
	keys := []string{c.key(board.QuizID), c.genKey(board.QuizID)}
	stored, err := setIfCurrent.Run(ctx, c.client, keys,
		strconv.FormatInt(gen, 10), strconv.Itoa(limit), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		c.log.Warn("leaderboard cache write failed", zap.String("quiz_id", board.QuizID), zap.Error(err))
		return
	}
	if stored == 0 {
		c.log.Debug("leaderboard cache write skipped, generation moved", zap.String("quiz_id", board.QuizID))
	}
}

// Invalidate bumps the generation and drops every cached limit atomically.
func (c *LeaderboardCache) Invalidate(ctx context.Context, quizID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(quizID))
		pipe.Del(ctx, c.key(quizID))
		return nil
	})
	return err
}

func (c *LeaderboardCache) key(quizID string) string {
	return "leaderboard:" + quizID
}

func (c *LeaderboardCache) genKey(quizID string) string {
	return "leaderboard:" + quizID + ":gen"
}
