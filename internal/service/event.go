package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"cita-client/internal/service/mq"
	"cita-client/pkg/crypto"
)

// EventTxSubmitted 节点接受交易后发布
const EventTxSubmitted = "tx.submitted"

// TxEvent 发布到消息队列的交易事件
type TxEvent struct {
	Event       string    `json:"event"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	*TxView
}

// SetPublisher 配置事件发布，p 为 nil 时关闭
func (s *TxService) SetPublisher(p mq.Producer, topic string) {
	s.producer = p
	s.topic = topic
}

// publish 尽力而为，失败只记日志，不影响 Send 的结果
func (s *TxService) publish(ctx context.Context, res *SendResult) {
	if s.producer == nil {
		return
	}
	env := res.Envelope
	signed, err := env.Verify()
	if err != nil {
		s.log.Warn("event skipped", zap.String("tx_hash", res.TxHash.Hex()), zap.Error(err))
		return
	}
	payload, err := json.Marshal(TxEvent{
		Event:       EventTxSubmitted,
		Status:      res.Status,
		SubmittedAt: time.Now().UTC(),
		TxView:      NewTxView(signed),
	})
	if err != nil {
		s.log.Warn("event encode failed", zap.Error(err))
		return
	}
	if err := s.producer.Publish(ctx, s.topic, crypto.FormatAddress(res.From), payload); err != nil {
		s.log.Warn("event publish failed",
			zap.String("tx_hash", res.TxHash.Hex()),
			zap.String("topic", s.topic),
			zap.Error(err))
	}
}
