package lock

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"hmy-wallet/pkg/safe_random"
)

var (
	ErrNotAcquired = errors.New("锁已被占用")
	ErrNotOwner    = errors.New("锁不存在或已被他人持有")
)

// DistributedLock 定义分布式锁接口
type DistributedLock interface {
	// Acquire 尝试获取锁, 成功返回持有者 token, 被占用返回 ErrNotAcquired
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Release 只释放自己持有的锁
	Release(ctx context.Context, key, token string) error
}

// NonceKey 同一账户的 populate -> send 需要串行, 否则会拿到重复 nonce
func NonceKey(account string) string {
	return "nonce:" + account
}

// AcquireWait 每隔 retry 重试一次, 直到获取成功或 ctx 结束
func AcquireWait(ctx context.Context, l DistributedLock, key string, ttl, retry time.Duration) (string, error) {
	ticker := time.NewTicker(retry)
	defer ticker.Stop()
	for {
		token, err := l.Acquire(ctx, key, ttl)
		if !errors.Is(err, ErrNotAcquired) {
			return token, err
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// 只有 value 与 token 一致时才删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock 基于 Redis SET NX 的实现, value 为随机 token
type RedisLock struct {
	client *redis.Client
}

func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{client: client}
}

func (l *RedisLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token, err := safe_random.Hex(16)
	if err != nil {
		return "", err
	}
	// SET lock:<key> <token> NX PX ttl
	ok, err := l.client.SetNX(ctx, "lock:"+key, token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotAcquired
	}
	return token, nil
}

func (l *RedisLock) Release(ctx context.Context, key, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{"lock:" + key}, token).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotOwner
	}
	return nil
}
