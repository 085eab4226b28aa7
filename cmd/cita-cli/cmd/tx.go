package cmd

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"cita-client/internal/service"
	"cita-client/pkg/abi"
	"cita-client/pkg/crypto"
)

type txFlags struct {
	keys     keyFlags
	to       string
	create   bool
	code     string
	data     string
	abiFile  string
	method   string
	function string
	quota    uint64
	vub      uint64
	value    string
	chainID  string
	version  uint32
	nonce    string
}

func (f *txFlags) register(cmd *cobra.Command) {
	f.keys.register(cmd)
	fl := cmd.Flags()
	fl.StringVar(&f.to, "to", "", "接收方或合约地址")
	fl.BoolVar(&f.create, "create", false, "创建合约 (--code 为部署代码)")
	fl.StringVar(&f.code, "code", "", "十六进制部署代码")
	fl.StringVarP(&f.data, "data", "d", "", "十六进制调用数据")
	fl.StringVar(&f.abiFile, "abi", "", "合约接口 JSON 文件，配合 --method 或 --create 编码参数")
	fl.StringVarP(&f.method, "method", "m", "", "方法名或完整签名")
	fl.StringVarP(&f.function, "function", "f", "", "函数签名，例如 transfer(address,uint256)")
	fl.Uint64VarP(&f.quota, "quota", "q", 0, "quota 上限，覆盖 tx.quota")
	fl.Uint64Var(&f.vub, "valid-until-block", 0, "截止块高 (默认当前块高 + tx.valid_window)")
	fl.StringVar(&f.value, "value", "", "转账金额，十进制或 0x 十六进制")
	fl.StringVar(&f.chainID, "chain-id", "", "chain id，覆盖 tx.chain_id (都为空时查询节点)")
	fl.Uint32Var(&f.version, "version", 0, "交易版本 0 或 1，覆盖 tx.version")
	fl.StringVar(&f.nonce, "nonce", "", "防重放 nonce (默认随机 UUID)")
	cmd.MarkFlagsMutuallyExclusive("to", "create")
	cmd.MarkFlagsMutuallyExclusive("function", "method")
}

// intent 参数 args 为方法或构造函数的实参
func (f *txFlags) intent(cmd *cobra.Command, args []string) (service.TxIntent, error) {
	in := service.TxIntent{
		To:              f.to,
		Create:          f.create,
		Quota:           f.quota,
		ValidUntilBlock: f.vub,
		Value:           f.value,
		ChainID:         f.chainID,
		Nonce:           f.nonce,
	}
	if cmd.Flags().Changed("version") {
		v := f.version
		in.Version = &v
	}

	var err error
	switch {
	case f.create:
		var code []byte
		if code, err = crypto.DecodeHex(f.code); err != nil {
			return in, err
		}
		in.Data = code
		if f.abiFile != "" {
			iface, err := readInterface(f.abiFile)
			if err != nil {
				return in, err
			}
			if in.Data, err = iface.EncodeConstructor(code, args); err != nil {
				return in, err
			}
		}
	case f.abiFile != "" && f.method != "":
		iface, err := readInterface(f.abiFile)
		if err != nil {
			return in, err
		}
		if in.Data, err = iface.EncodeInput(f.method, args); err != nil {
			return in, err
		}
	case f.function != "":
		in.Function, in.Args = f.function, args
	default:
		if in.Data, err = crypto.DecodeHex(f.data); err != nil {
			return in, err
		}
	}
	return in, nil
}

func readInterface(path string) (*abi.Interface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return abi.ParseInterface(data)
}

func newSignCmd(o *rootOptions) *cobra.Command {
	var (
		f       txFlags
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "sign [args...]",
		Short: "构建并签名交易，输出 0x 编码 (不提交)",
		Example: `  cita-cli sign --offline -p 0x... --to 0x7e5f... -f "transfer(address,uint256)" --chain-id 1 --valid-until-block 100 0x7e5f... 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := o.loadKey(cmd, &f.keys)
			if err != nil {
				return err
			}
			in, err := f.intent(cmd, args)
			if err != nil {
				return err
			}
			svc, closeFn, err := o.txService(cmd.Context(), kp, offline)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.Sign(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"tx":   res.Hex,
				"hash": res.TxHash.Hex(),
				"from": crypto.FormatAddress(res.From),
			})
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&offline, "offline", false, "不连接节点")
	return cmd
}

func newSendCmd(o *rootOptions) *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:   "send [args...]",
		Short: "构建、签名并提交交易",
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := o.loadKey(cmd, &f.keys)
			if err != nil {
				return err
			}
			in, err := f.intent(cmd, args)
			if err != nil {
				return err
			}
			svc, closeFn, err := o.txService(cmd.Context(), kp, false)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.Send(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"hash":   res.TxHash.Hex(),
				"status": res.Status,
				"from":   crypto.FormatAddress(res.From),
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newTxCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "签名交易的解码与查询",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "decode <hex>",
		Short: "解码并验签 0x 编码的签名交易",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := service.DecodeTx(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), view)
		},
	}, &cobra.Command{
		Use:   "get <hash>",
		Short: "从节点获取交易并验签",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := parseHash(args[0])
			if err != nil {
				return err
			}
			client, err := o.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			info, err := client.GetTransaction(cmd.Context(), hash)
			if err != nil {
				return err
			}
			view, err := service.DecodeTx(info.Content)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"block_number": uint64(info.BlockNumber),
				"index":        uint64(info.Index),
				"transaction":  view,
			})
		},
	})
	return cmd
}

func parseHash(s string) (common.Hash, error) {
	raw, err := crypto.DecodeHex(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("交易哈希必须是 32 字节，实际 %d", len(raw))
	}
	return common.BytesToHash(raw), nil
}
