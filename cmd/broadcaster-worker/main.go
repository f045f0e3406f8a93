package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hmy-wallet/internal/model"
	"hmy-wallet/internal/service/broadcaster"
	"hmy-wallet/internal/service/mq"
	"hmy-wallet/pkg/config"
	"hmy-wallet/pkg/database"
	"hmy-wallet/pkg/logger"
	"hmy-wallet/pkg/monitor"
	"hmy-wallet/pkg/provider"
	"hmy-wallet/pkg/signer"
	"hmy-wallet/pkg/utils/lock"
	"hmy-wallet/pkg/wallet"
)

// 独立运行的广播服务, 持有私钥
func main() {
	// 1. 初始化配置与日志
	config.Init()
	logger.Init(config.Global.App.Env, config.Global.App.LogLevel)
	defer logger.Sync()
	monitor.Init()

	logger.Info("启动广播服务 (Broadcaster Worker)...", zap.String("env", config.Global.App.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. 数据库: 广播记录
	db, err := database.ConnectPostgres(config.Global.DB.PostgresDSN(), config.Global.App.Env)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer database.ClosePostgres(db)

	// 3. Redis: nonce 锁, 以及 Redis Streams 模式下的 MQ
	rdb, err := database.ConnectRedis(ctx, config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}
	defer rdb.Close()

	// 4. 加载私钥与钱包
	walletCfg := config.Global.Wallet
	key, err := signer.Load(signer.Source{
		KeystorePath:   walletCfg.KeystorePath,
		Password:       walletCfg.Password,
		Mnemonic:       walletCfg.Mnemonic,
		Passphrase:     walletCfg.Passphrase,
		DerivationPath: walletCfg.DerivationPath,
		PrivateKey:     walletCfg.PrivateKey,
	})
	if err != nil {
		logger.Fatal("致命错误: 无法加载私钥", zap.Error(err))
	}

	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	node, err := provider.Dial(dialCtx, walletCfg.RpcUrl)
	dialCancel()
	if err != nil {
		logger.Fatal("节点连接失败", zap.Error(err))
	}
	defer node.Close()

	w, err := wallet.New(key, node,
		wallet.WithShard(walletCfg.ShardID),
		wallet.WithDefaultGasLimit(walletCfg.DefaultGasLimit),
		wallet.WithPollInterval(walletCfg.PollInterval),
		wallet.WithLogger(logger.Named("wallet")),
	)
	if err != nil {
		logger.Fatal("初始化钱包失败", zap.Error(err))
	}

	// 5. 初始化 MQ
	producer, consumer := newMQ(rdb)
	defer producer.Close()
	defer consumer.Close()

	workerCfg := config.Global.Worker
	svc := broadcaster.New(w, model.NewBroadcastRepository(db), lock.NewRedisLock(rdb), producer, broadcaster.Config{
		ResultTopic:   workerCfg.ResultTopic,
		Confirmations: walletCfg.Confirmations,
		WaitTimeout:   walletCfg.WaitTimeout,
		LockTTL:       workerCfg.LockTTL,
		LockRetry:     workerCfg.LockRetry,
	}, logger.Named("broadcaster"))

	// 6. 启动 Worker (订阅模式)
	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx, consumer, workerCfg.RequestTopic)
	}()

	// 7. 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("正在停止广播服务...")
		cancel()
		<-done
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("订阅失败", zap.Error(err))
		}
	}
	logger.Info("广播服务已停止")
}

func newMQ(rdb *redis.Client) (mq.Producer, mq.Consumer) {
	workerCfg := config.Global.Worker
	if config.Global.Redis.MQType == "kafka" {
		logger.Info("MQ Mode: Kafka", zap.Strings("brokers", config.Global.Kafka.Brokers))
		return mq.NewKafkaProducer(config.Global.Kafka.Brokers), mq.NewKafkaConsumer(config.Global.Kafka.Brokers, workerCfg.Group)
	}
	logger.Info("MQ Mode: Redis Streams")
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker-1"
	}
	return mq.NewRedisProducer(rdb, 10000), mq.NewRedisConsumer(rdb, workerCfg.Group, hostname)
}
