package mq

import "context"

// Producer 事件发布接口
type Producer interface {
	// Publish key 用作分区键 (发送方地址)，保证同一地址的事件有序
	Publish(ctx context.Context, topic string, key string, payload []byte) error
	Close() error
}

// Nop 未配置事件驱动时使用，丢弃所有消息
type Nop struct{}

func (Nop) Publish(context.Context, string, string, []byte) error { return nil }

func (Nop) Close() error { return nil }
