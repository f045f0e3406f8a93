// Package wallet 持有私钥, 负责交易的 populate -> check -> sign -> send 流程。
// Wallet 创建后不再修改, 可以被多个 goroutine 同时使用;
// 同一账户的 nonce 顺序由调用方保证。
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"hmy-wallet/pkg/address"
)

const DefaultPollInterval = 2 * time.Second

var (
	ErrNilKey      = errors.New("私钥不能为空")
	ErrNilProvider = errors.New("provider 不能为空")
	ErrWatchOnly   = errors.New("只读钱包不能签名")
)

type Wallet struct {
	key      *ecdsa.PrivateKey
	address  common.Address
	provider Provider

	shardID         uint32
	defaultGasLimit uint64
	pollInterval    time.Duration
	log             *zap.Logger
}

type Option func(*Wallet)

// WithShard 设置钱包所在分片, 作为 shardID/toShardID 的默认值
func WithShard(shardID uint32) Option {
	return func(w *Wallet) { w.shardID = shardID }
}

// WithDefaultGasLimit 节点无法估算 gas 时使用的兜底值, 0 表示不兜底
func WithDefaultGasLimit(gas uint64) Option {
	return func(w *Wallet) { w.defaultGasLimit = gas }
}

// WithPollInterval 设置 Wait 轮询回执的间隔
func WithPollInterval(d time.Duration) Option {
	return func(w *Wallet) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Wallet) {
		if l != nil {
			w.log = l
		}
	}
}

func New(key *ecdsa.PrivateKey, p Provider, opts ...Option) (*Wallet, error) {
	if key == nil {
		return nil, ErrNilKey
	}
	if p == nil {
		return nil, ErrNilProvider
	}
	w := &Wallet{
		key:          key,
		address:      crypto.PubkeyToAddress(key.PublicKey),
		provider:     p,
		pollInterval: DefaultPollInterval,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(zap.String("address", address.ToBech32(w.address)))
	return w, nil
}

// NewWatchOnly 只持有地址的钱包, 用于联网机器 populate 后交给离线机器签名
func NewWatchOnly(addr common.Address, p Provider, opts ...Option) (*Wallet, error) {
	if p == nil {
		return nil, ErrNilProvider
	}
	w := &Wallet{
		address:      addr,
		provider:     p,
		pollInterval: DefaultPollInterval,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(zap.String("address", address.ToBech32(w.address)), zap.Bool("watchOnly", true))
	return w, nil
}

func (w *Wallet) Address() common.Address { return w.address }

// WatchOnly 钱包没有私钥
func (w *Wallet) WatchOnly() bool { return w.key == nil }

func (w *Wallet) ShardID() uint32 { return w.shardID }

func (w *Wallet) Provider() Provider { return w.provider }

// GetChainID 每次都向节点查询, 钱包可能在两次调用之间切换了网络
func (w *Wallet) GetChainID(ctx context.Context) (*big.Int, error) {
	id, err := w.provider.ChainID(ctx)
	if err != nil {
		return nil, unavailable("chainId", err)
	}
	return id, nil
}
