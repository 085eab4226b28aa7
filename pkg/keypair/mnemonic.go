package keypair

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"

	"cita-client/pkg/crypto"
)

// DefaultPath 默认 BIP-44 派生路径
const DefaultPath = "m/44'/60'/0'/0/0"

var (
	ErrInvalidMnemonic = errors.New("无效的助记词")
	ErrInvalidPath     = errors.New("无效的派生路径")
)

// NewMnemonic 生成一个新的随机助记词 (BIP-39)。
// bitSize: 熵的位数，128 (12个单词) 或 256 (24个单词)。
func NewMnemonic(bitSize int) (string, error) {
	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", fmt.Errorf("生成熵失败: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("生成助记词失败: %w", err)
	}
	return mnemonic, nil
}

// FromMnemonic 由助记词 + 口令派生密钥对。
// 先通过 BIP-39 得到种子，再按 BIP-32 路径派生出 32 字节私钥；
// ed25519 族把这 32 字节作为种子使用。
func FromMnemonic(family crypto.Family, mnemonic, passphrase, path string) (*KeyPair, error) {
	seed, err := bip39.NewSeedWithErrorChecking(strings.TrimSpace(mnemonic), passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("生成主密钥失败: %w", err)
	}

	if path == "" {
		path = DefaultPath
	}
	child, err := derivePath(master, path)
	if err != nil {
		return nil, err
	}

	priv, err := child.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crypto.ErrInvalidKeyMaterial, err)
	}
	return FromPrivateKey(family, priv.Serialize())
}

// derivePath 解析路径并逐级派生
// 支持格式: m/44'/60'/0'/0/0 或 m/44h/60h/0h/0/0
func derivePath(master *hdkeychain.ExtendedKey, path string) (*hdkeychain.ExtendedKey, error) {
	path = strings.TrimSpace(path)
	if path == "m" {
		return master, nil
	}
	if !strings.HasPrefix(path, "m/") {
		return nil, fmt.Errorf("%w: %q 必须以 m/ 开头", ErrInvalidPath, path)
	}

	current := master
	for _, segment := range strings.Split(path[2:], "/") {
		hardened := false
		if strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h") {
			hardened = true
			segment = segment[:len(segment)-1]
		}

		val, err := strconv.ParseUint(segment, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: 路径段 %q: %v", ErrInvalidPath, segment, err)
		}
		index := uint32(val)
		if hardened {
			index += hdkeychain.HardenedKeyStart
		}

		current, err = current.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("派生子密钥失败: %w", err)
		}
	}
	return current, nil
}
