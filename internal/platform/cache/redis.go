package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"system_sentinel/internal/domain/model"
	"system_sentinel/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

const userKeyPrefix = "user:username:"

// UserCache is a read-through cache for the token-path user lookup. Entries
// are stored without the password hash (the JSON encoding already omits it),
// so the credential login path always goes to the store. A nil *UserCache is
// valid and disables caching entirely; redis failures never fail a request,
// they just fall through to the store.
type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// Connect builds the client and verifies it with a ping.
func Connect(cfg *config.Config) (*UserCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, err
	}

	return &UserCache{
		rdb: rdb,
		ttl: time.Duration(cfg.UserCacheTTLSeconds) * time.Second,
	}, nil
}

func (c *UserCache) Close() {
	if c != nil && c.rdb != nil {
		c.rdb.Close()
	}
}

// GetByUsername returns the cached user, or (nil, false) on miss, disabled
// cache or redis error.
func (c *UserCache) GetByUsername(ctx context.Context, username string) (*model.User, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, userKeyPrefix+username).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("user cache get failed: %v", err)
		}
		return nil, false
	}
	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, false
	}
	return &user, true
}

// Put stores the user under its username key for the configured TTL.
func (c *UserCache) Put(ctx context.Context, user *model.User) {
	if c == nil || c.rdb == nil || user == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, userKeyPrefix+user.Username, data, c.ttl).Err(); err != nil {
		log.Printf("user cache put failed: %v", err)
	}
}

// Invalidate removes the entries for the given usernames. Mutations call it
// with both the old and the new username so a rename leaves no stale entry.
func (c *UserCache) Invalidate(ctx context.Context, usernames ...string) {
	if c == nil || c.rdb == nil || len(usernames) == 0 {
		return
	}
	keys := make([]string, 0, len(usernames))
	for _, u := range usernames {
		keys = append(keys, userKeyPrefix+u)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("user cache invalidate failed: %v", err)
	}
}
