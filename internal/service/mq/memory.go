package mq

import (
	"context"
	"strconv"
	"sync"
)

// MemoryBroker 进程内的 Producer/Consumer, 用于单机开发与测试
// 消息只投递给订阅时已存在的订阅者; 处理失败的消息直接丢弃
type MemoryBroker struct {
	mu   sync.Mutex
	seq  uint64
	subs map[string][]chan *Message
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string][]chan *Message)}
}

func (b *MemoryBroker) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	b.mu.Lock()
	b.seq++
	msg := &Message{
		ID:      strconv.FormatUint(b.seq, 10),
		Topic:   topic,
		Key:     key,
		Payload: append([]byte(nil), payload...),
	}
	subs := append([]chan *Message(nil), b.subs[topic]...)
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe 阻塞直到 ctx 取消
func (b *MemoryBroker) Subscribe(ctx context.Context, topic string, handler Handler) error {
	ch := make(chan *Message, 64)
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	defer b.unsubscribe(topic, ch)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-ch:
			_ = handler(ctx, msg)
		}
	}
}

// Subscribers 当前订阅者数量, 测试中用来等待订阅就绪
func (b *MemoryBroker) Subscribers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

func (b *MemoryBroker) unsubscribe(topic string, ch chan *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, c := range subs {
		if c == ch {
			b.subs[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (b *MemoryBroker) Close() error { return nil }
