package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cita-client/pkg/config"
	"cita-client/pkg/errno"
	"cita-client/pkg/logger"
)

type rootOptions struct {
	configFile string
	nodeURL    string
	logLevel   string
	cfg        *config.Config
}

// NewRootCmd 每次调用都构造一棵新的命令树
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:   "cita-cli",
		Short: "CITA 链命令行客户端",
		Long: `编码合约调用、构建并签名交易、提交到节点以及解码节点返回。
支持 secp256k1 (keccak256) 与 ed25519 (blake2b) 两种算法族。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.configFile)
			if err != nil {
				return err
			}
			if o.nodeURL != "" {
				cfg.Node.URL = o.nodeURL
			}
			o.cfg = cfg
			logger.Init(cfg.App.Env, o.logLevel)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&o.configFile, "config", "c", "", "配置文件路径 (默认查找 ./config.yaml)")
	flags.StringVarP(&o.nodeURL, "url", "u", "", "节点 JSON-RPC 地址，覆盖 node.url")
	flags.StringVar(&o.logLevel, "log-level", "warn", "日志级别")

	root.AddCommand(
		newKeygenCmd(o),
		newAbiCmd(o),
		newSignCmd(o),
		newSendCmd(o),
		newCallCmd(o),
		newReceiptCmd(o),
		newTxCmd(o),
		newHeightCmd(o),
		newMetaCmd(o),
		newBalanceCmd(o),
	)
	return root
}

// Execute 执行命令，出错时打印错误码并以 1 退出
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		code, msg := errno.Decode(err)
		fmt.Fprintf(os.Stderr, "错误 [%d]: %s\n", code, msg)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
