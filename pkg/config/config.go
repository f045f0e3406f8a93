package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	DB     DBConfig     `mapstructure:"db"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Wallet WalletConfig `mapstructure:"wallet"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Worker WorkerConfig `mapstructure:"worker"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"` // 为空时按 env 决定
	HttpPort string `mapstructure:"http_port"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis" or "kafka"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

// WalletConfig 链连接与私钥来源
// 私钥来源优先级: keystore_path > mnemonic > private_key
type WalletConfig struct {
	RpcUrl          string        `mapstructure:"rpc_url"`
	ShardID         uint32        `mapstructure:"shard_id"`
	KeystorePath    string        `mapstructure:"keystore_path"`
	Password        string        `mapstructure:"password"` // 通常通过环境变量 WALLET_PASSWORD 传入
	Mnemonic        string        `mapstructure:"mnemonic"`
	Passphrase      string        `mapstructure:"passphrase"`
	DerivationPath  string        `mapstructure:"derivation_path"`
	PrivateKey      string        `mapstructure:"private_key"`
	DefaultGasLimit uint64        `mapstructure:"default_gas_limit"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	WaitTimeout     time.Duration `mapstructure:"wait_timeout"`
	Confirmations   uint64        `mapstructure:"confirmations"`
}

type CacheConfig struct {
	TTL         time.Duration `mapstructure:"ttl"`
	UseRedis    bool          `mapstructure:"use_redis"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
}

type WorkerConfig struct {
	RequestTopic string        `mapstructure:"request_topic"`
	ResultTopic  string        `mapstructure:"result_topic"`
	Group        string        `mapstructure:"group"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
	LockRetry    time.Duration `mapstructure:"lock_retry"`
}

var Global Config

// Init 从 ./config.yaml 或 ./config/config.yaml 加载
func Init() {
	if err := Load(""); err != nil {
		log.Fatalf("Fatal error config file: %s \n", err)
	}
	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// Load 读取配置到 Global; file 为空时按默认路径查找, 找不到文件时只使用默认值与环境变量
func Load(file string) error {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// 环境变量设置, 例如 WALLET_RPC_URL
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		log.Printf("Warning: Config file not found, using defaults and environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return err
	}
	Global = cfg
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http_port", "8080")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "wallet_user")
	v.SetDefault("db.password", "wallet_password")
	v.SetDefault("db.name", "wallet_db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.mq_type", "redis")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})

	v.SetDefault("wallet.rpc_url", "http://localhost:9500")
	v.SetDefault("wallet.shard_id", 0)
	v.SetDefault("wallet.keystore_path", "")
	v.SetDefault("wallet.password", "")
	v.SetDefault("wallet.mnemonic", "")
	v.SetDefault("wallet.passphrase", "")
	v.SetDefault("wallet.derivation_path", "m/44'/1023'/0'/0/0")
	v.SetDefault("wallet.private_key", "")
	v.SetDefault("wallet.default_gas_limit", 0)
	v.SetDefault("wallet.poll_interval", 2*time.Second)
	v.SetDefault("wallet.wait_timeout", 2*time.Minute)
	v.SetDefault("wallet.confirmations", 1)

	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.use_redis", false)
	v.SetDefault("cache.redis_prefix", "hmy:cache:")

	v.SetDefault("worker.request_topic", "wallet_tx_requests")
	v.SetDefault("worker.result_topic", "wallet_tx_results")
	v.SetDefault("worker.group", "broadcaster-group")
	v.SetDefault("worker.lock_ttl", 30*time.Second)
	v.SetDefault("worker.lock_retry", 200*time.Millisecond)
}

// PostgresDSN gorm 连接串
func (c DBConfig) PostgresDSN() string {
	return "host=" + c.Host + " user=" + c.User + " password=" + c.Password +
		" dbname=" + c.Name + " port=" + c.Port + " sslmode=disable"
}

// MigrateURL golang-migrate 连接串
func (c DBConfig) MigrateURL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.Name + "?sslmode=disable"
}
