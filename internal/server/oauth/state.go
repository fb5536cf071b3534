package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/beppofit-auth/internal/common"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

// ErrStateNotFound means the state is unknown, expired or already used.
var ErrStateNotFound = errors.New("oauth state not found")

const defaultStatePrefix = "oauth_state"

// StateStore keeps the PKCE verifier for each outstanding authorization
// request, keyed by its state value. Entries expire after ttl and can be
// consumed once.
type StateStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewStateStore(c redis.UniversalClient, prefix string, ttl time.Duration) *StateStore {
	if prefix == "" {
		prefix = defaultStatePrefix
	}
	return &StateStore{redis: c, prefix: prefix, ttl: ttl}
}

func (s *StateStore) key(state string) string {
	return s.prefix + ":" + state
}

// Create returns a new random state and PKCE verifier and stores the pair.
func (s *StateStore) Create(ctx context.Context) (string, string, error) {
	state, err := common.MakeRandHexString(32)
	if err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	ok, err := s.redis.SetNX(ctx, s.key(state), verifier, s.ttl).Result()
	if err != nil {
		return "", "", fmt.Errorf("store oauth state: %w", err)
	}
	if !ok {
		return "", "", errors.New("oauth state collision")
	}

	return state, verifier, nil
}

// Consume deletes the state and returns its verifier.
func (s *StateStore) Consume(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", ErrStateNotFound
	}

	verifier, err := s.redis.GetDel(ctx, s.key(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrStateNotFound
		}
		return "", fmt.Errorf("consume oauth state: %w", err)
	}
	return verifier, nil
}

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
