package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/quka-ai/quka-iot/app/core/srv"
	"github.com/quka-ai/quka-iot/app/store/sqlstore"
)

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores     func() *sqlstore.Provider
	redis      redis.UniversalClient
	httpEngine *gin.Engine

	jwtKeys *JWTKeys

	metrics *Metrics
	Plugins
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, //days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	core := &Core{
		cfg:        cfg,
		metrics:    NewMetrics("quka_iot", "core"),
		httpEngine: gin.New(),
	}

	keys, err := LoadJWTKeys(cfg.Security)
	if err != nil {
		panic(err)
	}
	core.jwtKeys = keys

	setupSqlStore(core)
	setupRedis(core)

	core.srv = srv.SetupSrvs()

	return core
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) JWTKeys() *JWTKeys {
	return s.jwtKeys
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	// 执行数据库表初始化
	if err := core.stores().Install(); err != nil {
		panic(err)
	}
	slog.Info("setupSqlStore done")
}

// setupRedis 未配置地址时不启用，Redis() 返回 nil
func setupRedis(core *Core) {
	cfg := core.cfg.Redis
	if !cfg.Enabled() {
		slog.Info("redis is not configured, cache disabled")
		return
	}

	opts := &redis.UniversalOptions{
		Addrs:        []string{cfg.Addr},
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  secondsOr(cfg.DialTimeout, 5),
		ReadTimeout:  secondsOr(cfg.ReadTimeout, 3),
		WriteTimeout: secondsOr(cfg.WriteTimeout, 3),
	}
	if cfg.Cluster {
		opts.Addrs = cfg.ClusterAddrs
		opts.Password = cfg.ClusterPasswd
		opts.DB = 0
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = 10
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}

	client := redis.NewUniversalClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		panic("failed to connect redis: " + err.Error())
	}
	core.redis = client
}

func secondsOr(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}

func (s *Core) Redis() redis.UniversalClient {
	return s.redis
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}
