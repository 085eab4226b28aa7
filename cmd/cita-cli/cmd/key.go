package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cita-client/pkg/crypto"
	"cita-client/pkg/keypair"
	"cita-client/pkg/keystore"
)

var errNoPassword = errors.New("no keystore password: set CITA_KEY_PASSWORD or run in a terminal")

type keyFlags struct {
	privateKey string
	keystore   string
	algorithm  string
}

func (f *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.privateKey, "private-key", "p", "", "十六进制私钥 (不指定时从 keystore 加载)")
	cmd.Flags().StringVarP(&f.keystore, "keystore", "k", "", "Keystore 文件路径，覆盖 key.keystore_path")
	cmd.Flags().StringVar(&f.algorithm, "algorithm", "", "secp256k1 或 ed25519，覆盖 key.algorithm")
}

func (o *rootOptions) family(name string) (crypto.Family, error) {
	if name == "" {
		name = o.cfg.Key.Algorithm
	}
	return crypto.FamilyByName(name)
}

// loadKey 优先使用 --private-key，否则解密 keystore
func (o *rootOptions) loadKey(cmd *cobra.Command, f *keyFlags) (*keypair.KeyPair, error) {
	if f.privateKey != "" {
		family, err := o.family(f.algorithm)
		if err != nil {
			return nil, err
		}
		return keypair.FromHex(family, f.privateKey)
	}

	path := f.keystore
	if path == "" {
		path = o.cfg.Key.KeystorePath
	}
	encrypted, err := keystore.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	password, err := o.password(cmd, "请输入 Keystore 密码: ")
	if err != nil {
		return nil, err
	}
	return keystore.DecryptKey(encrypted, password)
}

// password 优先取配置 (环境变量 CITA_KEY_PASSWORD)，否则在终端上提示输入
func (o *rootOptions) password(cmd *cobra.Command, prompt string) (string, error) {
	if o.cfg.Key.Password != "" {
		return o.cfg.Key.Password, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errNoPassword
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("读取密码失败: %w", err)
	}
	return string(b), nil
}
