package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Node   NodeConfig   `mapstructure:"node"`
	Tx     TxConfig     `mapstructure:"tx"`
	Key    KeyConfig    `mapstructure:"key"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Events EventsConfig `mapstructure:"events"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	HttpPort string `mapstructure:"http_port"`
}

type NodeConfig struct {
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MetaTTL       time.Duration `mapstructure:"meta_ttl"`       // getMetaData 缓存时间
	ProbeInterval time.Duration `mapstructure:"probe_interval"` // 定时探测节点，0 关闭
}

type TxConfig struct {
	Quota       uint64 `mapstructure:"quota"`
	ValidWindow uint64 `mapstructure:"valid_window"`
	Version     uint32 `mapstructure:"version"`
	ChainID     string `mapstructure:"chain_id"` // 为空时从节点 getMetaData 获取
}

type KeyConfig struct {
	Algorithm    string `mapstructure:"algorithm"` // secp256k1 / ed25519
	KeystorePath string `mapstructure:"keystore_path"`
	Password     string `mapstructure:"password"` // 通常通过环境变量 CITA_KEY_PASSWORD 传入
}

// CacheConfig 可选的 Redis 二级缓存，redis_addr 为空时只用进程内缓存
type CacheConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	Prefix        string `mapstructure:"prefix"`
}

// EventsConfig 交易提交后发布事件。driver: "" (关闭) / kafka / redis
type EventsConfig struct {
	Driver  string   `mapstructure:"driver"`
	Brokers []string `mapstructure:"brokers"` // kafka 专用
	Topic   string   `mapstructure:"topic"`
	MaxLen  int64    `mapstructure:"max_len"` // redis stream 近似长度上限
}

// EnvPrefix 环境变量前缀，例如 CITA_NODE_URL 覆盖 node.url
const EnvPrefix = "CITA"

var Global Config

// Init 加载配置到 Global，失败直接退出
func Init(file string) {
	cfg, err := Load(file)
	if err != nil {
		log.Fatalf("Fatal error config file: %s \n", err)
	}
	Global = *cfg
	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// Load 读取配置文件 + 环境变量。file 为空时在 . 和 ./config 下查找 config.yaml，找不到则只用默认值
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		// 显式指定的文件必须存在
		if _, err := os.Stat(file); err != nil {
			return nil, err
		}
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// 环境变量设置
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Tx.ValidWindow == 0 || c.Tx.ValidWindow > 100 {
		return fmt.Errorf("tx.valid_window must be within [1, 100], got %d", c.Tx.ValidWindow)
	}
	if c.Tx.Version > 1 {
		return fmt.Errorf("tx.version must be 0 or 1, got %d", c.Tx.Version)
	}
	if c.Node.Timeout <= 0 {
		return fmt.Errorf("node.timeout must be positive")
	}
	if c.Node.ProbeInterval < 0 {
		return fmt.Errorf("node.probe_interval must not be negative")
	}
	switch c.Events.Driver {
	case "":
	case "kafka":
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("events.brokers is required for the kafka driver")
		}
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("events driver redis requires cache.redis_addr")
		}
	default:
		return fmt.Errorf("unknown events.driver %q", c.Events.Driver)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.http_port", "8080")

	v.SetDefault("node.url", "http://127.0.0.1:1337")
	v.SetDefault("node.timeout", 10*time.Second)
	v.SetDefault("node.meta_ttl", 30*time.Second)
	v.SetDefault("node.probe_interval", 15*time.Second)

	v.SetDefault("tx.quota", 10000000)
	v.SetDefault("tx.valid_window", 88)
	v.SetDefault("tx.version", 0)
	v.SetDefault("tx.chain_id", "")

	v.SetDefault("key.algorithm", "secp256k1")
	v.SetDefault("key.keystore_path", "keystore.json")
	v.SetDefault("key.password", "")

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.prefix", "cita:")

	v.SetDefault("events.driver", "")
	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", "cita.tx.submitted")
	v.SetDefault("events.max_len", 10000)
}
