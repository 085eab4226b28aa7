// Package keystore 用口令加密保存单个私钥。
// 结构沿用 Keystore V3 的风格：scrypt 派生密钥，AES-256-GCM 加密，blake3 计算 MAC。
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"
	"lukechampine.com/blake3"

	"cita-client/pkg/crypto"
	"cita-client/pkg/keypair"
	"cita-client/pkg/safe_random"
)

const (
	version     = 3
	cipherName  = "aes-256-gcm"
	kdfName     = "scrypt"
	scryptDKLen = 32
)

var (
	ErrDecrypt     = errors.New("invalid password or corrupted keystore (MAC mismatch)")
	ErrUnsupported = errors.New("unsupported keystore")
)

// ScryptParams scrypt 成本参数
type ScryptParams struct {
	N int
	R int
	P int
}

var (
	// StandardScrypt 约 256MB 内存
	StandardScrypt = ScryptParams{N: 262144, R: 8, P: 1}
	// LightScrypt 约 4MB 内存，用于测试和低配设备
	LightScrypt = ScryptParams{N: 4096, R: 8, P: 6}
)

// EncryptedKeyJSON 磁盘上的 keystore 文件
type EncryptedKeyJSON struct {
	Address   string     `json:"address"`
	Algorithm string     `json:"algorithm"` // secp256k1 / ed25519
	Crypto    CryptoJSON `json:"crypto"`
	Id        string     `json:"id"`
	Version   int        `json:"version"`
}

type CryptoJSON struct {
	Cipher       string       `json:"cipher"`
	CipherText   string       `json:"ciphertext"`
	CipherParams CipherParams `json:"cipherparams"`
	KDF          string       `json:"kdf"`
	KDFParams    KDFParams    `json:"kdfparams"`
	MAC          string       `json:"mac"`
}

type CipherParams struct {
	IV string `json:"iv"`
}

type KDFParams struct {
	DKLen int    `json:"dklen"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	Salt  string `json:"salt"`
}

// EncryptKey 用口令加密密钥对的私钥
func EncryptKey(kp *keypair.KeyPair, password string, params ScryptParams) (*EncryptedKeyJSON, error) {
	salt, err := safe_random.GenerateRandomBytes(32)
	if err != nil {
		return nil, err
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, scryptDKLen)
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(derivedKey)
	if err != nil {
		return nil, err
	}
	nonce, err := safe_random.GenerateRandomBytes(gcm.NonceSize())
	if err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, nonce, kp.PrivateKey(), nil)
	mac := computeMAC(derivedKey, ciphertext)

	return &EncryptedKeyJSON{
		Address:   crypto.FormatAddress(kp.Address()),
		Algorithm: kp.Family().Name(),
		Id:        uuid.NewString(),
		Version:   version,
		Crypto: CryptoJSON{
			Cipher:       cipherName,
			CipherText:   hex.EncodeToString(ciphertext),
			CipherParams: CipherParams{IV: hex.EncodeToString(nonce)},
			KDF:          kdfName,
			KDFParams: KDFParams{
				DKLen: scryptDKLen,
				N:     params.N,
				R:     params.R,
				P:     params.P,
				Salt:  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(mac),
		},
	}, nil
}

// DecryptKey 解密并恢复密钥对，恢复出的地址必须与文件记录一致
func DecryptKey(k *EncryptedKeyJSON, password string) (*keypair.KeyPair, error) {
	if k.Version != version || k.Crypto.Cipher != cipherName || k.Crypto.KDF != kdfName {
		return nil, fmt.Errorf("%w: version %d, cipher %q, kdf %q", ErrUnsupported, k.Version, k.Crypto.Cipher, k.Crypto.KDF)
	}
	family, err := crypto.FamilyByName(k.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	salt, err := hex.DecodeString(k.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %v", err)
	}
	nonce, err := hex.DecodeString(k.Crypto.CipherParams.IV)
	if err != nil {
		return nil, fmt.Errorf("invalid iv: %v", err)
	}
	ciphertext, err := hex.DecodeString(k.Crypto.CipherText)
	if err != nil {
		return nil, fmt.Errorf("invalid ciphertext: %v", err)
	}
	mac, err := hex.DecodeString(k.Crypto.MAC)
	if err != nil {
		return nil, fmt.Errorf("invalid mac: %v", err)
	}

	p := k.Crypto.KDFParams
	derivedKey, err := scrypt.Key([]byte(password), salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return nil, err
	}
	if !crypto.ConstantTimeEqual(mac, computeMAC(derivedKey, ciphertext)) {
		return nil, ErrDecrypt
	}

	gcm, err := newGCM(derivedKey)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: iv length %d", ErrUnsupported, len(nonce))
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}

	kp, err := keypair.FromPrivateKey(family, plaintext)
	if err != nil {
		return nil, err
	}
	if k.Address != "" && k.Address != crypto.FormatAddress(kp.Address()) {
		return nil, ErrDecrypt
	}
	return kp, nil
}

// SaveToFile 以 0600 权限写入
func (k *EncryptedKeyJSON) SaveToFile(filename string) error {
	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0600)
}

// LoadFromFile 从文件加载
func LoadFromFile(filename string) (*EncryptedKeyJSON, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var k EncryptedKeyJSON
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return &k, nil
}

// LoadKey 读取文件并解密
func LoadKey(filename, password string) (*keypair.KeyPair, error) {
	k, err := LoadFromFile(filename)
	if err != nil {
		return nil, err
	}
	return DecryptKey(k, password)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// computeMAC blake3(derivedKey[16:32] || ciphertext)
func computeMAC(derivedKey, ciphertext []byte) []byte {
	buf := make([]byte, 0, 16+len(ciphertext))
	buf = append(buf, derivedKey[16:32]...)
	buf = append(buf, ciphertext...)
	sum := blake3.Sum256(buf)
	return sum[:]
}
