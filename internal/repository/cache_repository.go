package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	// ErrCacheDisabled 未配置 Redis
	ErrCacheDisabled = errors.New("cache: redis not configured")
	// ErrCacheMiss 键不存在
	ErrCacheMiss = errors.New("cache: miss")
)

const (
	keyLeaderboardXP    = "codepath:leaderboard:xp"
	keyLeaderboardReady = "codepath:leaderboard:xp:ready"
	keyRecommendations  = "codepath:recommendations:"

	leaderboardBatch = 500
)

// LeaderboardScore 排行榜中的一项
type LeaderboardScore struct {
	UserID uint
	XP     int
	Rank   int
}

// CacheRepository Redis 缓存与经验排行榜（有序集合），Client 为 nil 时所有操作返回 ErrCacheDisabled
type CacheRepository struct {
	Client *redis.Client
}

func NewCacheRepository(client *redis.Client) *CacheRepository {
	return &CacheRepository{Client: client}
}

func (r *CacheRepository) Enabled() bool {
	return r != nil && r.Client != nil
}

func member(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// SetLeaderboardXP 写入用户的总经验
func (r *CacheRepository) SetLeaderboardXP(ctx context.Context, userID uint, xp int) error {
	if !r.Enabled() {
		return ErrCacheDisabled
	}
	return r.Client.ZAdd(ctx, keyLeaderboardXP, &redis.Z{Score: float64(xp), Member: member(userID)}).Err()
}

// AddToLeaderboard 新用户入榜，已存在时不覆盖
func (r *CacheRepository) AddToLeaderboard(ctx context.Context, userID uint, xp int) error {
	if !r.Enabled() {
		return ErrCacheDisabled
	}
	return r.Client.ZAddNX(ctx, keyLeaderboardXP, &redis.Z{Score: float64(xp), Member: member(userID)}).Err()
}

func (r *CacheRepository) RemoveFromLeaderboard(ctx context.Context, userID uint) error {
	if !r.Enabled() {
		return ErrCacheDisabled
	}
	return r.Client.ZRem(ctx, keyLeaderboardXP, member(userID)).Err()
}

// LeaderboardReady 有序集合是否已由 RebuildLeaderboard 完整构建
func (r *CacheRepository) LeaderboardReady(ctx context.Context) (bool, error) {
	if !r.Enabled() {
		return false, ErrCacheDisabled
	}
	n, err := r.Client.Exists(ctx, keyLeaderboardReady).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RebuildLeaderboard 用全部用户的经验重建有序集合并写入就绪标记
func (r *CacheRepository) RebuildLeaderboard(ctx context.Context, scores []LeaderboardScore) error {
	if !r.Enabled() {
		return ErrCacheDisabled
	}
	members := make([]*redis.Z, 0, len(scores))
	for _, sc := range scores {
		members = append(members, &redis.Z{Score: float64(sc.XP), Member: member(sc.UserID)})
	}
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keyLeaderboardXP)
		for i := 0; i < len(members); i += leaderboardBatch {
			end := i + leaderboardBatch
			if end > len(members) {
				end = len(members)
			}
			pipe.ZAdd(ctx, keyLeaderboardXP, members[i:end]...)
		}
		pipe.Set(ctx, keyLeaderboardReady, "1", 0)
		return nil
	})
	return err
}

// LeaderboardTop 经验最高的前 limit 名，同分按用户 ID 升序
func (r *CacheRepository) LeaderboardTop(ctx context.Context, limit int) ([]LeaderboardScore, error) {
	if !r.Enabled() {
		return nil, ErrCacheDisabled
	}
	zs, err := r.Client.ZRevRangeWithScores(ctx, keyLeaderboardXP, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(zs) == 0 {
		return nil, ErrCacheMiss
	}
	out := make([]LeaderboardScore, 0, len(zs))
	for _, z := range zs {
		m, _ := z.Member.(string)
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, LeaderboardScore{UserID: uint(id), XP: int(z.Score)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].UserID < out[j].UserID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// LeaderboardRank 经验严格高于 xp 的人数 + 1，与数据库排名一致
func (r *CacheRepository) LeaderboardRank(ctx context.Context, xp int) (int, error) {
	if !r.Enabled() {
		return 0, ErrCacheDisabled
	}
	n, err := r.Client.ZCount(ctx, keyLeaderboardXP, "("+strconv.Itoa(xp), "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(n) + 1, nil
}

func recommendationKey(userID uint, limit int) string {
	return fmt.Sprintf("%s%d:%d", keyRecommendations, userID, limit)
}

// GetRecommendations 读取缓存的推荐结果
func (r *CacheRepository) GetRecommendations(ctx context.Context, userID uint, limit int, dest interface{}) error {
	if !r.Enabled() {
		return ErrCacheDisabled
	}
	raw, err := r.Client.Get(ctx, recommendationKey(userID, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (r *CacheRepository) SetRecommendations(ctx context.Context, userID uint, limit int, value interface{}, ttl time.Duration) error {
	if !r.Enabled() {
		return ErrCacheDisabled
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, recommendationKey(userID, limit), raw, ttl).Err()
}

// InvalidateRecommendations 删除该用户所有 limit 的推荐缓存
func (r *CacheRepository) InvalidateRecommendations(ctx context.Context, userID uint) error {
	if !r.Enabled() {
		return ErrCacheDisabled
	}
	pattern := fmt.Sprintf("%s%d:*", keyRecommendations, userID)
	iter := r.Client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.Client.Del(ctx, keys...).Err()
}
