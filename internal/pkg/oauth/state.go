package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	stateKeyPrefix = "predict:oauth:state:"
	stateTTL       = 10 * time.Minute
)

var ErrInvalidState = errors.New("invalid or expired oauth state")

// StateStore 一次性 OAuth state，值为登录完成后跳回的控制台地址
type StateStore struct {
	rdb *redis.Client
}

func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb}
}

// GenerateState 生成 256 位随机 state 并写入 Redis
func (s *StateStore) GenerateState(ctx context.Context, returnURL string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random state: %w", err)
	}
	state := hex.EncodeToString(buf)

	if err := s.rdb.Set(ctx, stateKeyPrefix+state, returnURL, stateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return state, nil
}

// ConsumeState 校验并删除 state，返回关联的跳转地址
func (s *StateStore) ConsumeState(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", ErrInvalidState
	}

	returnURL, err := s.rdb.GetDel(ctx, stateKeyPrefix+state).Result()
	if err == redis.Nil {
		return "", ErrInvalidState
	}
	if err != nil {
		return "", fmt.Errorf("failed to load state: %w", err)
	}

	return returnURL, nil
}
