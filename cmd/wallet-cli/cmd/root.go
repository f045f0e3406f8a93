package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hmy-wallet/pkg/config"
	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/logger"
	"hmy-wallet/pkg/provider"
	"hmy-wallet/pkg/signer"
	"hmy-wallet/pkg/wallet"
)

var (
	configFile string
	rpcURL     string
	shardID    uint32
	keyFile    string
	keyPath    string
	verbose    bool
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "wallet-cli",
	Short: "Harmony (ONE) 钱包命令行工具",
	Long: `构造、签名并发送 Harmony 普通交易与质押交易。
私钥来源: --keystore 指定的文件, 或配置中的 wallet.mnemonic / wallet.private_key。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(configFile); err != nil {
			return err
		}
		if verbose {
			logger.Init(config.Global.App.Env, "debug")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code, msg := errno.Decode(err)
		fmt.Fprintf(os.Stderr, "错误 [%d]: %s\n", code, msg)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "配置文件 (默认 ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc", "", "节点 RPC 地址 (覆盖 wallet.rpc_url)")
	rootCmd.PersistentFlags().Uint32Var(&shardID, "shard", 0, "发送方分片")
	rootCmd.PersistentFlags().StringVarP(&keyFile, "keystore", "k", "", "Keystore 文件路径 (覆盖 wallet.keystore_path)")
	rootCmd.PersistentFlags().StringVar(&keyPath, "path", "", "助记词派生路径 (默认 m/44'/1023'/0'/0/0)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
}

// keySource 合并命令行与配置; keystore 未配置密码时交互输入
func keySource() (signer.Source, error) {
	cfg := config.Global.Wallet
	src := signer.Source{
		KeystorePath:   cfg.KeystorePath,
		Password:       cfg.Password,
		Mnemonic:       cfg.Mnemonic,
		Passphrase:     cfg.Passphrase,
		DerivationPath: cfg.DerivationPath,
		PrivateKey:     cfg.PrivateKey,
	}
	if keyFile != "" {
		src.KeystorePath = keyFile
	}
	if keyPath != "" {
		src.DerivationPath = keyPath
	}
	if src.KeystorePath != "" && src.Password == "" {
		password, err := readPassword("请输入 Keystore 密码: ")
		if err != nil {
			return src, err
		}
		src.Password = password
	}
	return src, nil
}

func dialProvider(ctx context.Context) (*provider.HarmonyProvider, error) {
	url := config.Global.Wallet.RpcUrl
	if rpcURL != "" {
		url = rpcURL
	}
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return provider.Dial(dialCtx, url)
}

func shard() uint32 {
	if rootCmd.PersistentFlags().Changed("shard") {
		return shardID
	}
	return config.Global.Wallet.ShardID
}

// openWallet 加载私钥并连接节点
func openWallet(ctx context.Context) (*wallet.Wallet, func(), error) {
	src, err := keySource()
	if err != nil {
		return nil, nil, err
	}
	key, err := signer.Load(src)
	if err != nil {
		return nil, nil, err
	}
	node, err := dialProvider(ctx)
	if err != nil {
		return nil, nil, errno.Wrap(errno.ErrProviderUnavailable, err)
	}
	w, err := wallet.New(key, node,
		wallet.WithShard(shard()),
		wallet.WithDefaultGasLimit(config.Global.Wallet.DefaultGasLimit),
		wallet.WithPollInterval(config.Global.Wallet.PollInterval),
		wallet.WithLogger(logger.Log),
	)
	if err != nil {
		node.Close()
		return nil, nil, err
	}
	return w, node.Close, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSON(file string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0600)
}

func readJSON(file string, v interface{}) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("解析文件失败: %w", err)
	}
	return nil
}
