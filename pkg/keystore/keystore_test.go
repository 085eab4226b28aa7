package keystore

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cita-client/pkg/crypto"
	"cita-client/pkg/keypair"
)

func TestEncryptDecryptKey(t *testing.T) {
	for _, f := range []crypto.Family{crypto.Secp256k1, crypto.Ed25519} {
		t.Run(f.Name(), func(t *testing.T) {
			kp, err := keypair.Generate(f)
			require.NoError(t, err)

			keyJSON, err := EncryptKey(kp, "secure-password", LightScrypt)
			require.NoError(t, err)
			assert.Equal(t, "aes-256-gcm", keyJSON.Crypto.Cipher)
			assert.Equal(t, f.Name(), keyJSON.Algorithm)
			assert.Equal(t, crypto.FormatAddress(kp.Address()), keyJSON.Address)

			restored, err := DecryptKey(keyJSON, "secure-password")
			require.NoError(t, err)
			assert.Equal(t, kp.Address(), restored.Address())
			assert.Equal(t, kp.PrivateKey(), restored.PrivateKey())

			_, err = DecryptKey(keyJSON, "wrong-password")
			assert.ErrorIs(t, err, ErrDecrypt)
		})
	}
}

func TestTamperedKeystore(t *testing.T) {
	kp, err := keypair.Generate(crypto.Secp256k1)
	require.NoError(t, err)
	keyJSON, err := EncryptKey(kp, "pw", LightScrypt)
	require.NoError(t, err)

	tampered := *keyJSON
	ct := []byte(tampered.Crypto.CipherText)
	if ct[0] == '0' {
		ct[0] = '1'
	} else {
		ct[0] = '0'
	}
	tampered.Crypto.CipherText = string(ct)
	_, err = DecryptKey(&tampered, "pw")
	assert.ErrorIs(t, err, ErrDecrypt)

	unsupported := *keyJSON
	unsupported.Crypto.Cipher = "aes-128-ctr"
	_, err = DecryptKey(&unsupported, "pw")
	assert.ErrorIs(t, err, ErrUnsupported)

	unknownAlgo := *keyJSON
	unknownAlgo.Algorithm = "sm2"
	_, err = DecryptKey(&unknownAlgo, "pw")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestFileSaveLoad(t *testing.T) {
	kp, err := keypair.Generate(crypto.Ed25519)
	require.NoError(t, err)
	keyJSON, err := EncryptKey(kp, "123456", LightScrypt)
	require.NoError(t, err)

	filename := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, keyJSON.SaveToFile(filename))

	info, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	raw, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), hex.EncodeToString(kp.PrivateKey())))

	loaded, err := LoadFromFile(filename)
	require.NoError(t, err)
	assert.Equal(t, keyJSON.Id, loaded.Id)

	restored, err := LoadKey(filename, "123456")
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), restored.Address())

	require.NoError(t, os.WriteFile(filename, []byte("{"), 0600))
	_, err = LoadFromFile(filename)
	assert.ErrorIs(t, err, ErrUnsupported)
}
