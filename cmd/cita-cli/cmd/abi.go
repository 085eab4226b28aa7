package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cita-client/pkg/abi"
	"cita-client/pkg/crypto"
)

var errAbiTarget = errors.New("需要 --abi 与 --method，或 --signature，或 --types")

type abiFlags struct {
	abiFile   string
	method    string
	signature string
	types     string
}

func (f *abiFlags) register(cmd *cobra.Command, withSignature bool) {
	cmd.Flags().StringVar(&f.abiFile, "abi", "", "合约接口 JSON 文件")
	cmd.Flags().StringVarP(&f.method, "method", "m", "", "方法名或完整签名")
	if withSignature {
		cmd.Flags().StringVarP(&f.signature, "signature", "s", "", "函数签名，例如 transfer(address,uint256)")
	}
	cmd.Flags().StringVarP(&f.types, "types", "t", "", "参数类型列表，例如 address,uint256 或 (uint256,bool)[]")
}

func (f *abiFlags) iface() (*abi.Interface, error) {
	data, err := os.ReadFile(f.abiFile)
	if err != nil {
		return nil, err
	}
	return abi.ParseInterface(data)
}

func (f *abiFlags) encode(args []string) ([]byte, error) {
	switch {
	case f.abiFile != "" && f.method != "":
		iface, err := f.iface()
		if err != nil {
			return nil, err
		}
		return iface.EncodeInput(f.method, args)
	case f.signature != "":
		return abi.EncodeFunction(f.signature, args)
	case f.types != "":
		types, err := abi.ParseTypeList(f.types)
		if err != nil {
			return nil, err
		}
		return abi.EncodeParams(types, args)
	}
	return nil, errAbiTarget
}

func (f *abiFlags) decode(data []byte) ([]abi.Value, error) {
	switch {
	case f.abiFile != "" && f.method != "":
		iface, err := f.iface()
		if err != nil {
			return nil, err
		}
		return iface.DecodeOutput(f.method, data)
	case f.types != "":
		types, err := abi.ParseTypeList(f.types)
		if err != nil {
			return nil, err
		}
		return abi.DecodeParams(types, data)
	}
	return nil, errAbiTarget
}

func newAbiCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abi",
		Short: "合约调用数据编码 / 解码",
	}

	var enc abiFlags
	encodeCmd := &cobra.Command{
		Use:   "encode [args...]",
		Short: "编码调用数据",
		Example: `  cita-cli abi encode -s "transfer(address,uint256)" 0x7e5f4552091a69125d5dfcb7b8c2659029395bdf 100
  cita-cli abi encode -t "uint256[],bool" "[1,2]" true`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := enc.encode(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "0x"+hex.EncodeToString(data))
			return nil
		},
	}
	enc.register(encodeCmd, true)

	var dec abiFlags
	decodeCmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "解码返回数据",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := crypto.DecodeHex(args[0])
			if err != nil {
				return err
			}
			values, err := dec.decode(data)
			if err != nil {
				return err
			}
			printValues(cmd, values)
			return nil
		},
	}
	dec.register(decodeCmd, false)

	cmd.AddCommand(encodeCmd, decodeCmd)
	return cmd
}

func printValues(cmd *cobra.Command, values []abi.Value) {
	for _, v := range values {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", v.Type.String(), v.String())
	}
}
