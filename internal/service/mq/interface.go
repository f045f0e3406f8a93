package mq

import "context"

// Message 代表一条通用的业务消息
type Message struct {
	ID      string // 消息ID (Redis Stream ID 或 Kafka partition/offset)
	Topic   string
	Key     string // 分区键, 广播任务使用发送方地址保证同一账户有序
	Payload []byte // JSON
}

// Handler 处理一条消息, 返回 error 时消息不会被确认
type Handler func(ctx context.Context, msg *Message) error

// Producer 生产者接口
type Producer interface {
	// Publish 发送消息, key 为空时随机分区
	Publish(ctx context.Context, topic string, key string, payload []byte) error
	Close() error
}

// Consumer 消费者接口
type Consumer interface {
	// Subscribe 阻塞消费 topic, 直到 ctx 取消
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
