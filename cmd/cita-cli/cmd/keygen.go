package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cita-client/pkg/crypto"
	"cita-client/pkg/keypair"
	"cita-client/pkg/keystore"
)

type keygenResult struct {
	Algorithm   string `json:"algorithm"`
	Address     string `json:"address"`
	PublicKey   string `json:"public_key"`
	PrivateKey  string `json:"private_key,omitempty"`
	Mnemonic    string `json:"mnemonic,omitempty"`
	Path        string `json:"path,omitempty"`
	KeystoreOut string `json:"keystore,omitempty"`
}

func newKeygenCmd(o *rootOptions) *cobra.Command {
	var (
		algorithm    string
		withMnemonic bool
		fromMnemonic string
		passphrase   string
		path         string
		out          string
		lightKDF     bool
		showPrivate  bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "生成密钥对",
		Long: `随机生成密钥对，或由 BIP-39 助记词 + 口令派生。
指定 --out 时用密码加密保存为 keystore 文件 (权限 0600)。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			family, err := o.family(algorithm)
			if err != nil {
				return err
			}

			res := keygenResult{Algorithm: family.Name()}
			var kp *keypair.KeyPair
			switch {
			case fromMnemonic != "":
				res.Path = pathOrDefault(path)
				kp, err = keypair.FromMnemonic(family, fromMnemonic, passphrase, res.Path)
			case withMnemonic:
				if res.Mnemonic, err = keypair.NewMnemonic(128); err != nil {
					return err
				}
				res.Path = pathOrDefault(path)
				kp, err = keypair.FromMnemonic(family, res.Mnemonic, passphrase, res.Path)
			default:
				kp, err = keypair.Generate(family)
			}
			if err != nil {
				return err
			}

			res.Address = crypto.FormatAddress(kp.Address())
			res.PublicKey = "0x" + hex.EncodeToString(kp.PublicKey())
			if showPrivate {
				res.PrivateKey = "0x" + hex.EncodeToString(kp.PrivateKey())
			}

			if out != "" {
				if _, err := os.Stat(out); err == nil {
					return fmt.Errorf("文件 %s 已存在", out)
				}
				password, err := o.newPassword(cmd)
				if err != nil {
					return err
				}
				params := keystore.StandardScrypt
				if lightKDF {
					params = keystore.LightScrypt
				}
				encrypted, err := keystore.EncryptKey(kp, password, params)
				if err != nil {
					return err
				}
				if err := encrypted.SaveToFile(out); err != nil {
					return err
				}
				res.KeystoreOut = out
			}

			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", "", "secp256k1 或 ed25519，覆盖 key.algorithm")
	cmd.Flags().BoolVar(&withMnemonic, "mnemonic", false, "生成新的 12 词助记词并由其派生")
	cmd.Flags().StringVar(&fromMnemonic, "from-mnemonic", "", "由已有助记词派生")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "BIP-39 口令")
	cmd.Flags().StringVar(&path, "path", "", "派生路径 (默认 "+keypair.DefaultPath+")")
	cmd.Flags().StringVarP(&out, "out", "o", "", "保存 keystore 的文件路径")
	cmd.Flags().BoolVar(&lightKDF, "light-kdf", false, "使用低内存 scrypt 参数")
	cmd.Flags().BoolVar(&showPrivate, "show-private", false, "输出私钥")
	cmd.MarkFlagsMutuallyExclusive("mnemonic", "from-mnemonic")
	return cmd
}

func pathOrDefault(p string) string {
	if p == "" {
		return keypair.DefaultPath
	}
	return p
}

// newPassword 设置新密码：终端上需要输入两次
func (o *rootOptions) newPassword(cmd *cobra.Command) (string, error) {
	if o.cfg.Key.Password != "" {
		return o.cfg.Key.Password, nil
	}
	password, err := o.password(cmd, "输入密码: ")
	if err != nil {
		return "", err
	}
	confirm, err := o.password(cmd, "确认密码: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("两次输入的密码不一致")
	}
	if len(password) < 6 {
		return "", errors.New("密码长度至少需要 6 位")
	}
	return password, nil
}
