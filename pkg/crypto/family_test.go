package crypto

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allFamilies() []Family {
	return []Family{Secp256k1, Ed25519}
}

func TestSignAndRecover(t *testing.T) {
	for _, f := range allFamilies() {
		t.Run(f.Name(), func(t *testing.T) {
			key, err := f.GenerateKey(rand.Reader)
			require.NoError(t, err)

			digest := f.Digest([]byte("transaction payload"))
			sig, err := key.Sign(digest)
			require.NoError(t, err)
			assert.Equal(t, f.Crypto(), sig.Crypto)
			assert.Len(t, sig.Bytes, f.SignatureLength())

			pub, err := f.Recover(sig, digest)
			require.NoError(t, err)
			assert.Equal(t, key.Public(), pub)
			assert.Equal(t, f.PubkeyToAddress(key.Public()), f.PubkeyToAddress(pub))

			require.NoError(t, f.Verify(sig, digest, key.Public()))
		})
	}
}

func TestTamperedDigestFails(t *testing.T) {
	for _, f := range allFamilies() {
		t.Run(f.Name(), func(t *testing.T) {
			key, err := f.GenerateKey(rand.Reader)
			require.NoError(t, err)

			payload := []byte("quota=100000;nonce=abc")
			sig, err := key.Sign(f.Digest(payload))
			require.NoError(t, err)

			tampered := append([]byte(nil), payload...)
			tampered[3] ^= 0x01
			err = f.Verify(sig, f.Digest(tampered), key.Public())
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestToPrivateKeyErrors(t *testing.T) {
	_, err := Secp256k1.ToPrivateKey(make([]byte, 31))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)

	// 0 不是合法标量
	_, err = Secp256k1.ToPrivateKey(make([]byte, 32))
	assert.ErrorIs(t, err, ErrInvalidKeyMaterial)

	// >= N
	over := common.FromHex("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	_, err = Secp256k1.ToPrivateKey(over)
	assert.ErrorIs(t, err, ErrInvalidKeyMaterial)

	_, err = Ed25519.ToPrivateKey(make([]byte, 33))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)

	// 64 字节私钥的公钥部分与种子不匹配
	bad := make([]byte, 64)
	bad[0] = 1
	_, err = Ed25519.ToPrivateKey(bad)
	assert.ErrorIs(t, err, ErrInvalidKeyMaterial)
}

func TestSecp256k1KnownAddress(t *testing.T) {
	// 私钥 = 1 对应的地址是公开的测试向量
	raw := common.LeftPadBytes([]byte{1}, 32)
	key, err := Secp256k1.ToPrivateKey(raw)
	require.NoError(t, err)

	addr := Secp256k1.PubkeyToAddress(key.Public())
	assert.Equal(t, "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf", FormatAddress(addr))
	assert.Equal(t, raw, key.Bytes())
}

func TestEd25519SeedRoundTrip(t *testing.T) {
	key, err := Ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	again, err := Ed25519.ToPrivateKey(key.Bytes())
	require.NoError(t, err)
	assert.Equal(t, key.Public(), again.Public())

	full := append(key.Bytes(), key.Public()...)
	again, err = Ed25519.ToPrivateKey(full)
	require.NoError(t, err)
	assert.Equal(t, key.Public(), again.Public())
}

func TestRecoverRejectsWrongFamily(t *testing.T) {
	key, err := Ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	digest := Ed25519.Digest([]byte("x"))
	sig, err := key.Sign(digest)
	require.NoError(t, err)

	_, err = Secp256k1.Recover(sig, digest)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestFamilyLookup(t *testing.T) {
	f, err := FamilyOf(CryptoEd25519)
	require.NoError(t, err)
	assert.Equal(t, "ed25519", f.Name())

	_, err = FamilyOf(Crypto(7))
	assert.ErrorIs(t, err, ErrUnknownCrypto)

	f, err = FamilyByName("SECP256K1")
	require.NoError(t, err)
	assert.Equal(t, CryptoSecp256k1, f.Crypto())

	_, err = FamilyByName("rsa")
	assert.ErrorIs(t, err, ErrUnknownCrypto)
}

func TestParseAddress(t *testing.T) {
	want := "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf"
	for _, in := range []string{
		want,
		"0X7E5F4552091A69125D5DFCB7B8C2659029395BDF",
		strings.TrimPrefix(want, "0x"),
	} {
		addr, err := ParseAddress(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, FormatAddress(addr))
	}

	_, err := ParseAddress("0x1234")
	assert.ErrorIs(t, err, ErrInvalidAddress)
	_, err = ParseAddress("0xzz5f4552091a69125d5dfcb7b8c2659029395bdf")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestRemove0x(t *testing.T) {
	assert.Equal(t, "0b", Remove0x("0x0b"))
	assert.Equal(t, "0b", Remove0x("0X0b"))
	assert.Equal(t, "0b", Remove0x("0b"))
	assert.Equal(t, "", Remove0x("0x"))
	assert.Equal(t, "0", Remove0x("0"))
}
