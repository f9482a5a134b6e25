package credstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is an exported constant or variable used by the session kit.
var ErrRedisUnavailable = errors.New("credential store redis unavailable")

const defaultRedisTimeout = 2 * time.Second

// RedisStore defines a public type used by authkit APIs.
//
// RedisStore shares one credential and tenant selection across a fleet of headless
// clients (report runners, import workers) pointed at the same keyspace. Keys are
// "<prefix>:auth_token" and "<prefix>:selectedCompany" with no expiry; lifetime is
// governed by the renewal protocol, not by the store.
type RedisStore struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisStore creates a store on the given client. An empty prefix defaults to
// "leadsphere".
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "leadsphere"
	}
	return &RedisStore{
		rdb:     rdb,
		prefix:  prefix,
		timeout: defaultRedisTimeout,
	}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":" + name
}

func (s *RedisStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Get returns the stored credential, if any. Backend failures read as "absent":
// a flaky cache must not fail call sites that only probe for presence.
func (s *RedisStore) Get() (Credential, bool) {
	ctx, cancel := s.ctx()
	defer cancel()

	token, err := s.rdb.Get(ctx, s.key(KeyToken)).Result()
	if err != nil || token == "" {
		return Credential{}, false
	}
	return Credential{BearerToken: token}, true
}

// Set persists the credential.
func (s *RedisStore) Set(c Credential) error {
	ctx, cancel := s.ctx()
	defer cancel()

	if err := s.rdb.Set(ctx, s.key(KeyToken), c.BearerToken, 0).Err(); err != nil {
		return errors.Join(ErrRedisUnavailable, err)
	}
	return nil
}

// Clear removes the credential.
func (s *RedisStore) Clear() error {
	ctx, cancel := s.ctx()
	defer cancel()

	if err := s.rdb.Del(ctx, s.key(KeyToken)).Err(); err != nil {
		return errors.Join(ErrRedisUnavailable, err)
	}
	return nil
}

// Tenant returns the selected tenant id.
func (s *RedisStore) Tenant() string {
	ctx, cancel := s.ctx()
	defer cancel()

	tenant, err := s.rdb.Get(ctx, s.key(KeyTenant)).Result()
	if err != nil {
		return ""
	}
	return tenant
}

// SetTenant persists the tenant selector. An empty id clears the selection.
func (s *RedisStore) SetTenant(id string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	if id == "" {
		if err := s.rdb.Del(ctx, s.key(KeyTenant)).Err(); err != nil {
			return errors.Join(ErrRedisUnavailable, err)
		}
		return nil
	}
	if err := s.rdb.Set(ctx, s.key(KeyTenant), id, 0).Err(); err != nil {
		return errors.Join(ErrRedisUnavailable, err)
	}
	return nil
}
