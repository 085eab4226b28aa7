package mq

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cita-client/pkg/logger"
)

// RedisProducer 基于 Redis Stream (XADD)
type RedisProducer struct {
	client redis.UniversalClient
	maxLen int64
	log    *zap.Logger
}

// NewRedisProducer maxLen > 0 时按近似长度裁剪 stream
func NewRedisProducer(client redis.UniversalClient, maxLen int64) *RedisProducer {
	return &RedisProducer{client: client, maxLen: maxLen, log: logger.Named("mq.redis")}
}

func (p *RedisProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	args := &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			"key":     key,
			"payload": payload,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		p.log.Warn("publish failed", zap.String("stream", topic), zap.Error(err))
		return fmt.Errorf("redis xadd error: %w", err)
	}
	return nil
}

// Close client 与缓存共用，由调用方关闭
func (p *RedisProducer) Close() error {
	return nil
}
