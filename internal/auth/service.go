package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tokenPrefix = "authtoken:"
	tokenTTL    = 24 * time.Hour
)

// TokenStore resolves opaque bearer credentials to user ids. Tokens are
// minted by the external auth collaborator (LNURL verify flow) via Issue and
// stored in Redis; this backend only ever resolves and revokes them.
type TokenStore struct {
	Rdb *redis.Client
}

// Issue creates an opaque bearer token for a user.
func (s *TokenStore) Issue(ctx context.Context, userID uint) (string, error) {
	token := strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
	key := tokenPrefix + token
	if err := s.Rdb.Set(ctx, key, strconv.FormatUint(uint64(userID), 10), tokenTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user id a token was issued to.
func (s *TokenStore) Resolve(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, ErrNotAuthenticated
	}
	val, err := s.Rdb.Get(ctx, tokenPrefix+token).Result()
	if err == redis.Nil {
		return 0, ErrTokenExpired
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrNotAuthenticated
	}
	return uint(id), nil
}

// Revoke deletes a token (logout).
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	return s.Rdb.Del(ctx, tokenPrefix+token).Err()
}
