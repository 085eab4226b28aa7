package cmd

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cita-client/pkg/contract"
	"cita-client/pkg/crypto"
	"cita-client/pkg/rpc"
)

func newCallCmd(o *rootOptions) *cobra.Command {
	var (
		to      string
		data    string
		abiFile string
		method  string
		height  string
	)
	cmd := &cobra.Command{
		Use:   "call [args...]",
		Short: "只读调用合约",
		Long: `指定 --abi 与 --method 时编码参数并解码返回值，否则发送 --data 并输出原始返回。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := o.dial(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			if abiFile != "" && method != "" {
				abiJSON, err := os.ReadFile(abiFile)
				if err != nil {
					return err
				}
				c, err := contract.New(client, to, abiJSON, nil)
				if err != nil {
					return err
				}
				values, err := c.Call(ctx, method, args...)
				if err != nil {
					return err
				}
				printValues(cmd, values)
				return nil
			}

			addr, err := crypto.ParseAddress(to)
			if err != nil {
				return err
			}
			input, err := crypto.DecodeHex(data)
			if err != nil {
				return err
			}
			out, err := client.CallContract(ctx, rpc.CallRequest{To: addr, Data: input}, height)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "0x"+hex.EncodeToString(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "合约地址")
	cmd.Flags().StringVarP(&data, "data", "d", "", "十六进制调用数据")
	cmd.Flags().StringVar(&abiFile, "abi", "", "合约接口 JSON 文件")
	cmd.Flags().StringVarP(&method, "method", "m", "", "方法名或完整签名")
	cmd.Flags().StringVar(&height, "height", rpc.HeightLatest, "块高 (latest 或数字)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newReceiptCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <hash>",
		Short: "查询交易回执",
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

			receipt, err := client.GetTransactionReceipt(cmd.Context(), hash)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), receipt)
		},
	}
}

func newHeightCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "height",
		Short: "当前块高",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := o.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			h, err := client.BlockNumber(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func newMetaCmd(o *rootOptions) *cobra.Command {
	var height string
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "链元数据 (chain id、版本等)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := o.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			meta, err := client.GetMetaData(cmd.Context(), height)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), meta)
		},
	}
	cmd.Flags().StringVar(&height, "height", rpc.HeightLatest, "块高 (latest 或数字)")
	return cmd
}

func newBalanceCmd(o *rootOptions) *cobra.Command {
	var height string
	cmd := &cobra.Command{
		Use:   "balance <address>",
		Short: "查询余额",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := crypto.ParseAddress(args[0])
			if err != nil {
				return err
			}
			client, err := o.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			balance, err := client.GetBalance(cmd.Context(), addr, height)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), balance.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&height, "height", rpc.HeightLatest, "块高 (latest 或数字)")
	return cmd
}
