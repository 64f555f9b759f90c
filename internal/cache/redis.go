package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const userKeyPrefix = "splitledger:user:"

// cachedUser is the profile stored in Redis. The password hash never leaves
// the database.
type cachedUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func toCached(u *models.User) cachedUser {
	return cachedUser{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c cachedUser) user() *models.User {
	return &models.User{
		ID:          c.ID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		AvatarURL:   c.AvatarURL,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func userKey(id string) string { return userKeyPrefix + id }

// Redis is a read-through UserCache. Redis failures degrade to store reads.
type Redis struct {
	client  *redis.Client
	users   storage.UserStore
	ttl     time.Duration
	metrics *metrics.Metrics
}

var _ UserCache = (*Redis)(nil)

// Dial connects to redisURL and verifies the connection.
func Dial(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

// NewRedis wraps users with a Redis cache. m may be nil.
func NewRedis(client *redis.Client, users storage.UserStore, ttl time.Duration, m *metrics.Metrics) *Redis {
	return &Redis{client: client, users: users, ttl: ttl, metrics: m}
}

func (r *Redis) observe(result string, n int) {
	if r.metrics != nil && n > 0 {
		r.metrics.UserCacheLookups.WithLabelValues(result).Add(float64(n))
	}
}

func (r *Redis) GetUser(ctx context.Context, id string) (*models.User, error) {
	data, err := r.client.Get(ctx, userKey(id)).Bytes()
	switch {
	case err == nil:
		var cu cachedUser
		if err := json.Unmarshal(data, &cu); err == nil {
			r.observe("hit", 1)
			return cu.user(), nil
		}
		r.observe("error", 1)
	case errors.Is(err, redis.Nil):
		r.observe("miss", 1)
	default:
		slog.Warn("user cache read failed", "user_id", id, "error", err)
		r.observe("error", 1)
	}

	user, err := r.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, user)
	return user, nil
}

func (r *Redis) GetUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}

	missing := ids
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Warn("user cache batch read failed", "count", len(ids), "error", err)
		r.observe("error", len(ids))
	} else {
		missing = missing[:0:0]
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var cu cachedUser
			if err := json.Unmarshal([]byte(s), &cu); err != nil {
				missing = append(missing, ids[i])
				continue
			}
			out[ids[i]] = cu.user()
		}
		r.observe("hit", len(out))
		r.observe("miss", len(missing))
	}

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := r.users.GetUsersByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		if u, ok := fetched[id]; ok {
			out[id] = u
			r.store(ctx, u)
		}
	}
	return out, nil
}

// store writes through, logging and swallowing failures.
func (r *Redis) store(ctx context.Context, u *models.User) {
	data, err := json.Marshal(toCached(u))
	if err != nil {
		slog.Warn("user cache encode failed", "user_id", u.ID, "error", err)
		return
	}
	if err := r.client.Set(ctx, userKey(u.ID), data, r.ttl).Err(); err != nil {
		slog.Warn("user cache write failed", "user_id", u.ID, "error", err)
	}
}
