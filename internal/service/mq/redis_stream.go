package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hmy-wallet/pkg/logger"
)

const (
	fieldPayload = "payload"
	fieldKey     = "key"
)

// RedisProducer 实现 Producer 接口 (Redis Streams)
type RedisProducer struct {
	client *redis.Client
	maxLen int64
}

// NewRedisProducer 创建 Redis 生产者, maxLen > 0 时近似裁剪 Stream 长度
func NewRedisProducer(client *redis.Client, maxLen int64) *RedisProducer {
	return &RedisProducer{client: client, maxLen: maxLen}
}

// Publish XADD <topic> * key <key> payload <payload>
func (p *RedisProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	args := &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			fieldKey:     key,
			fieldPayload: payload,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		logger.Error("[Redis MQ] publish failed", zap.String("topic", topic), zap.Error(err))
		return fmt.Errorf("redis xadd error: %w", err)
	}
	return nil
}

// Close 连接由调用方管理
func (p *RedisProducer) Close() error { return nil }

// RedisConsumer 实现 Consumer 接口
type RedisConsumer struct {
	client *redis.Client
	group  string
	name   string
	block  time.Duration
}

// NewRedisConsumer 创建 Redis 消费者, name 在组内唯一
func NewRedisConsumer(client *redis.Client, group, name string) *RedisConsumer {
	return &RedisConsumer{
		client: client,
		group:  group,
		name:   name,
		block:  2 * time.Second,
	}
}

// Subscribe 订阅 Redis Stream
// 先重放本消费者名下未确认的消息 (上次崩溃遗留), 再读新消息
func (c *RedisConsumer) Subscribe(ctx context.Context, topic string, handler Handler) error {
	// XGROUP CREATE <stream> <group> 0 MKSTREAM
	err := c.client.XGroupCreateMkStream(ctx, topic, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("创建消费者组失败: %w", err)
	}

	logger.Info("[Redis MQ] 开始监听主题", zap.String("topic", topic), zap.String("group", c.group), zap.String("consumer", c.name))

	cursor := "0"
	for {
		if ctx.Err() != nil {
			return nil
		}
		// XREADGROUP GROUP <group> <consumer> BLOCK 2000 COUNT 100 STREAMS <topic> <cursor>
		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.name,
			Streams:  []string{topic, cursor},
			Count:    100,
			Block:    c.block,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("[Redis MQ] 读取消息错误", zap.Error(err))
			if !sleepCtx(ctx, time.Second) {
				return nil
			}
			continue
		}

		for _, stream := range streams {
			for _, x := range stream.Messages {
				c.dispatch(ctx, topic, x, handler)
			}
		}
		// pending 只重放一轮, 再次失败的消息留给 XCLAIM 人工处理
		cursor = ">"
	}
}

func (c *RedisConsumer) dispatch(ctx context.Context, topic string, x redis.XMessage, handler Handler) {
	payload, ok := x.Values[fieldPayload].(string)
	if !ok {
		logger.Warn("[Redis MQ] 消息格式错误: payload 缺失", zap.String("id", x.ID))
		c.ack(ctx, topic, x.ID)
		return
	}
	key, _ := x.Values[fieldKey].(string)

	msg := &Message{ID: x.ID, Topic: topic, Key: key, Payload: []byte(payload)}
	if err := handler(ctx, msg); err != nil {
		logger.Error("[Redis MQ] 消息处理失败", zap.String("id", x.ID), zap.Error(err))
		return
	}
	c.ack(ctx, topic, x.ID)
}

func (c *RedisConsumer) ack(ctx context.Context, topic, id string) {
	if err := c.client.XAck(ctx, topic, c.group, id).Err(); err != nil {
		logger.Warn("[Redis MQ] ack 失败", zap.String("id", id), zap.Error(err))
	}
}

// Close 连接由调用方管理
func (c *RedisConsumer) Close() error { return nil }
