// Package flash 一次性提示消息，写入后在下一次读取时删除
package flash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message 一条提示消息
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Store 保存每个用户的待显示消息
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewStore 创建消息存储，消息在ttl后自动过期
func NewStore(client redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(userID int64) string {
	return fmt.Sprintf("admincms:flash:%d", userID)
}

// Push 写入消息，覆盖尚未读取的旧消息
func (s *Store) Push(ctx context.Context, userID int64, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(userID), data, s.ttl).Err()
}

// Pop 读取并删除消息，没有消息时返回 nil
func (s *Store) Pop(ctx context.Context, userID int64) (*Message, error) {
	data, err := s.client.GetDel(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	msg := &Message{}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
