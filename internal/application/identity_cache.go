package application

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/internal/domain/entity"
	repo "github.com/medli/medli-api/internal/domain/repository"
	"github.com/medli/medli-api/pkg/helpers"
)

// IdentityCache keeps the password-free view of recently authenticated users
// in Redis. Redis errors are logged and the database is used instead.
type IdentityCache struct {
	Users  repo.UserRepository
	Redis  redis.Cmdable
	TTL    time.Duration
	Logger logrus.FieldLogger
}

type cachedIdentity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewIdentityCache(users repo.UserRepository, rdb redis.Cmdable, ttl time.Duration, logger logrus.FieldLogger) *IdentityCache {
	return &IdentityCache{Users: users, Redis: rdb, TTL: ttl, Logger: logger}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func goneKey(userID string) string {
	return "user:gone:" + userID
}

// Lookup returns the user without its password hash.
// It returns repository.ErrNotFound when the user does not exist.
func (c *IdentityCache) Lookup(ctx context.Context, userID string) (*entity.User, error) {
	if c.Redis != nil {
		var ci cachedIdentity
		hit, err := helpers.RedisGetJSON(ctx, c.Redis, sessionKey(userID), &ci)
		if err != nil {
			helpers.LogWarn(c.Logger, "identity cache read failed", err, logrus.Fields{"user_id": userID})
		} else if hit {
			return &entity.User{ID: ci.ID, Name: ci.Name, Email: ci.Email, CreatedAt: ci.CreatedAt, UpdatedAt: ci.UpdatedAt}, nil
		}
	}

	u, err := c.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := *u
	view.Password = ""
	c.Put(ctx, &view)
	return &view, nil
}

// Put refreshes the cached view of u. Writes for a user evicted within the
// last TTL are dropped, so a read that raced the deletion cannot bring it back.
func (c *IdentityCache) Put(ctx context.Context, u *entity.User) {
	if c == nil || c.Redis == nil || u == nil || c.TTL <= 0 {
		return
	}
	ci := cachedIdentity{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
	if _, err := helpers.RedisSetJSONUnless(ctx, c.Redis, sessionKey(u.ID), goneKey(u.ID), ci, c.TTL); err != nil {
		helpers.LogWarn(c.Logger, "identity cache write failed", err, logrus.Fields{"user_id": u.ID})
	}
}

// Evict drops the cached view of a deleted user and blocks refills for one TTL.
func (c *IdentityCache) Evict(ctx context.Context, userID string) {
	if c == nil || c.Redis == nil {
		return
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	// the marker goes first so no fill can land between the two writes
	err := c.Redis.Set(ctx, goneKey(userID), 1, ttl).Err()
	if err == nil {
		err = helpers.RedisDel(ctx, c.Redis, sessionKey(userID))
	}
	if err != nil {
		helpers.LogWarn(c.Logger, "identity cache evict failed", err, logrus.Fields{"user_id": userID})
	}
}
