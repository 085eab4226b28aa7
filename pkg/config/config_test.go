package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.HttpPort)
	assert.Equal(t, 10*time.Second, cfg.Node.Timeout)
	assert.Equal(t, uint64(88), cfg.Tx.ValidWindow)
	assert.Equal(t, uint32(0), cfg.Tx.Version)
	assert.Equal(t, "secp256k1", cfg.Key.Algorithm)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
app:
  env: production
node:
  url: http://node:1337
  timeout: 3s
tx:
  quota: 500
  valid_window: 20
  version: 1
  chain_id: "0x1"
key:
  algorithm: ed25519
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "http://node:1337", cfg.Node.URL)
	assert.Equal(t, 3*time.Second, cfg.Node.Timeout)
	assert.Equal(t, uint64(500), cfg.Tx.Quota)
	assert.Equal(t, uint64(20), cfg.Tx.ValidWindow)
	assert.Equal(t, uint32(1), cfg.Tx.Version)
	assert.Equal(t, "0x1", cfg.Tx.ChainID)
	assert.Equal(t, "ed25519", cfg.Key.Algorithm)
	// 未出现的键仍使用默认值
	assert.Equal(t, "keystore.json", cfg.Key.KeystorePath)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CITA_NODE_URL", "http://env-node:1337")
	t.Setenv("CITA_KEY_PASSWORD", "from-env")

	cfg, err := Load(writeConfig(t, "node:\n  url: http://file-node:1337\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://env-node:1337", cfg.Node.URL)
	assert.Equal(t, "from-env", cfg.Key.Password)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "tx:\n  valid_window: 101\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "tx:\n  version: 2\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "app: [1, 2\n"))
	assert.Error(t, err)
}

func TestCacheSection(t *testing.T) {
	cfg, err := Load(writeConfig(t, "cache:\n  redis_addr: localhost:6379\n  redis_db: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 2, cfg.Cache.RedisDB)
	assert.Equal(t, "cita:", cfg.Cache.Prefix)
}

func TestEventsSection(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Events.Driver)
	assert.Equal(t, "cita.tx.submitted", cfg.Events.Topic)

	cfg, err = Load(writeConfig(t, "events:\n  driver: kafka\n  brokers: [\"k1:9092\", \"k2:9092\"]\n  topic: txs\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Brokers)
	assert.Equal(t, "txs", cfg.Events.Topic)

	_, err = Load(writeConfig(t, "events:\n  driver: kafka\n"))
	assert.Error(t, err)
	_, err = Load(writeConfig(t, "events:\n  driver: redis\n"))
	assert.Error(t, err)
	_, err = Load(writeConfig(t, "events:\n  driver: nats\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "events:\n  driver: redis\ncache:\n  redis_addr: localhost:6379\n"))
	assert.NoError(t, err)
}
