package main

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hmy-wallet/internal/handler"
	"hmy-wallet/internal/server"
	"hmy-wallet/pkg/cache"
	"hmy-wallet/pkg/config"
	"hmy-wallet/pkg/database"
	"hmy-wallet/pkg/logger"
	"hmy-wallet/pkg/provider"
	"hmy-wallet/pkg/signer"
	"hmy-wallet/pkg/wallet"
)

// @title Harmony Wallet API
// @version 1.0
// @description Harmony (ONE) 交易发送与链上查询 API

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env, config.Global.App.LogLevel)
	defer logger.Sync()

	ctx := context.Background()
	walletCfg := config.Global.Wallet

	// 2. 连接节点
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	node, err := provider.Dial(dialCtx, walletCfg.RpcUrl)
	cancel()
	if err != nil {
		logger.Fatal("节点连接失败", zap.Error(err))
	}

	// 3. 查询缓存: 本地 go-cache, 可选 Redis 二级缓存
	var rdb *redis.Client
	var remote cache.Cache
	if config.Global.Cache.UseRedis {
		rdb, err = database.ConnectRedis(ctx, config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		remote = cache.NewRedisCache(rdb, config.Global.Cache.RedisPrefix)
	}
	local := cache.NewMemoryCache(config.Global.Cache.TTL, 2*config.Global.Cache.TTL)
	chain := provider.NewCached(node, cache.NewMultiLevelCache(local, remote), walletCfg.ShardID, config.Global.Cache.TTL)

	// 4. 加载签名私钥, 未配置时以只读模式运行
	var w *wallet.Wallet
	key, err := signer.Load(signer.Source{
		KeystorePath:   walletCfg.KeystorePath,
		Password:       walletCfg.Password,
		Mnemonic:       walletCfg.Mnemonic,
		Passphrase:     walletCfg.Passphrase,
		DerivationPath: walletCfg.DerivationPath,
		PrivateKey:     walletCfg.PrivateKey,
	})
	switch {
	case errors.Is(err, signer.ErrNoKeySource):
		logger.Warn("未配置私钥来源, 发送接口不可用")
	case err != nil:
		logger.Fatal("加载私钥失败", zap.Error(err))
	default:
		w, err = wallet.New(key, chain,
			wallet.WithShard(walletCfg.ShardID),
			wallet.WithDefaultGasLimit(walletCfg.DefaultGasLimit),
			wallet.WithPollInterval(walletCfg.PollInterval),
			wallet.WithLogger(logger.Named("wallet")),
		)
		if err != nil {
			logger.Fatal("初始化钱包失败", zap.Error(err))
		}
	}

	// 5. HTTP Router
	walletHandler := handler.NewWalletHandler(w, chain, walletCfg.WaitTimeout)
	r := server.NewHTTPRouter(walletHandler)

	// 6. 启动应用 (阻塞)
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r)
	app.OnShutdown(func() error {
		node.Close()
		return nil
	})
	if rdb != nil {
		app.OnShutdown(rdb.Close)
	}
	app.Run()
}
