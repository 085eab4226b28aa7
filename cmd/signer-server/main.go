package main

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cita-client/internal/handler"
	"cita-client/internal/server"
	"cita-client/internal/service"
	"cita-client/internal/service/mq"
	"cita-client/pkg/cache"
	"cita-client/pkg/config"
	"cita-client/pkg/crypto"
	"cita-client/pkg/keystore"
	"cita-client/pkg/logger"
	"cita-client/pkg/rpc"
	"cita-client/pkg/txbuilder"

	_ "cita-client/docs/swagger"
)

// @title CITA Signer API
// @version 1.0
// @description ABI 编解码、交易签名与提交

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /

// signer-server 持有一把 keystore 中的密钥，对外提供编码、签名与提交接口
func main() {
	// 0. 初始化 Config (CITA_CONFIG 指定文件，否则查找 ./config.yaml)
	config.Init(os.Getenv("CITA_CONFIG"))
	cfg := config.Global

	// 1. 初始化 Logger
	logger.Init(cfg.App.Env, cfg.App.LogLevel)
	defer logger.Sync()

	// 2. 加载签名密钥
	kp, err := keystore.LoadKey(cfg.Key.KeystorePath, cfg.Key.Password)
	if err != nil {
		logger.Fatal("加载 Keystore 失败", zap.String("path", cfg.Key.KeystorePath), zap.Error(err))
	}
	logger.Info("签名密钥已加载",
		zap.String("address", crypto.FormatAddress(kp.Address())),
		zap.String("algorithm", kp.Family().Name()))

	// 3. 链元数据缓存：进程内，配置了 Redis 时加一级共享缓存
	ctx := context.Background()
	var metaCache cache.Cache = cache.NewMemoryCache(cfg.Node.MetaTTL, 2*cfg.Node.MetaTTL)
	var rdb *redis.Client
	if cfg.Cache.RedisAddr != "" {
		rdb, err = cache.DialRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
		}
		defer rdb.Close()
		metaCache = cache.NewMultiLevelCache(metaCache, cache.NewRedisCache(rdb, cfg.Cache.Prefix), cfg.Node.MetaTTL/2)
	}

	// 4. 连接节点
	client, err := rpc.Dial(ctx, cfg.Node.URL,
		rpc.WithTimeout(cfg.Node.Timeout),
		rpc.WithMetaCache(metaCache, cfg.Node.MetaTTL),
	)
	if err != nil {
		logger.Fatal("节点连接失败", zap.String("url", cfg.Node.URL), zap.Error(err))
	}
	defer client.Close()

	// 5. 交易构建器与服务
	builder, err := txbuilder.New(client, txbuilder.WithValidWindow(cfg.Tx.ValidWindow))
	if err != nil {
		logger.Fatal("初始化 Builder 失败", zap.Error(err))
	}
	defaults, err := service.DefaultsFromConfig(cfg.Tx)
	if err != nil {
		logger.Fatal("交易配置错误", zap.Error(err))
	}
	svc := service.NewTxService(client, builder, kp, defaults)

	// 6. 交易事件 (可选)
	var producer mq.Producer
	switch cfg.Events.Driver {
	case "kafka":
		producer = mq.NewKafkaProducer(cfg.Events.Brokers, cfg.Events.Topic)
	case "redis":
		producer = mq.NewRedisProducer(rdb, cfg.Events.MaxLen)
	}
	if producer != nil {
		defer producer.Close()
		svc.SetPublisher(producer, cfg.Events.Topic)
		logger.Info("交易事件已启用", zap.String("driver", cfg.Events.Driver), zap.String("topic", cfg.Events.Topic))
	}

	// 7. 节点探测
	if cfg.Node.ProbeInterval > 0 {
		watcher := service.NewNodeWatcher(client, cfg.Node.ProbeInterval, cfg.Node.Timeout)
		watcher.Start()
		defer watcher.Stop()
	}

	// 8. HTTP Router
	r := server.NewHTTPRouter(handler.NewTxHandler(svc))

	// 9. 运行 (阻塞)
	app := server.New(server.Config{HttpPort: cfg.App.HttpPort}, r)
	if err := app.Run(); err != nil {
		logger.Fatal("服务异常退出", zap.Error(err))
	}
	logger.Info("系统已退出")
}
