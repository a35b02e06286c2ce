package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	conf.SetConfigBytes(raw)

	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}

	conf.setDefaults()
	return *conf
}

func (c CoreConfig) LoadCustomConfig(cfg any) error {
	if len(c.bytes) == 0 {
		return nil
	}
	if err := toml.Unmarshal(c.bytes, cfg); err != nil {
		return err
	}
	return nil
}

type CustomConfig[T any] struct {
	CustomConfig T `toml:"custom_config"`
}

func NewCustomConfigPayload[T any]() CustomConfig[T] {
	return CustomConfig[T]{}
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	c.setDefaults()
	return c
}

type CoreConfig struct {
	Addr          string              `toml:"addr"`
	Log           Log                 `toml:"log"`
	Postgres      PGConfig            `toml:"postgres"`
	Redis         RedisConfig         `toml:"redis"`
	Site          Site                `toml:"site"`
	ObjectStorage ObjectStorageDriver `toml:"object_storage"`

	Security Security      `toml:"security"`
	Channel  ChannelConfig `toml:"channel"`

	bytes []byte `toml:"-"`
}

type ObjectStorageDriver struct {
	StaticDomain string              `toml:"static_domain"`
	Driver       string              `toml:"driver"` // s3 | local | none
	S3           *S3Config           `toml:"s3"`
	Local        *LocalStorageConfig `toml:"local"`
}

type S3Config struct {
	Bucket       string `toml:"bucket"`
	Region       string `toml:"region"`
	Endpoint     string `toml:"endpoint"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	UsePathStyle bool   `toml:"use_path_style"`
}

type LocalStorageConfig struct {
	Dir string `toml:"dir"`
}

type Site struct {
	DefaultAvatar string `toml:"default_avatar"`
}

func (c *CoreConfig) SetConfigBytes(raw []byte) {
	c.bytes = raw
}

type Security struct {
	// PEM 内容或文件路径
	JWTPrivateKey    string `toml:"jwt_private_key"`
	JWTPublicKey     string `toml:"jwt_public_key"`
	TokenExpireHours int    `toml:"token_expire_hours"`
	BcryptCost       int    `toml:"bcrypt_cost"`
}

func (s Security) TokenExpire() time.Duration {
	return time.Duration(s.TokenExpireHours) * time.Hour
}

type ChannelConfig struct {
	// 删除字段时是否同时清理历史数据点
	PurgeHistoryOnFieldRemoval bool `toml:"purge_history_on_field_removal"`
	// 每个 api key 每分钟允许写入的次数，0 表示不限制
	IngestRateLimit int `toml:"ingest_rate_limit"`
	// api key -> channel id 缓存时间(秒)
	APIKeyCacheTTL int `toml:"api_key_cache_ttl"`
}

func (c ChannelConfig) APIKeyCacheExpire() time.Duration {
	return time.Duration(c.APIKeyCacheTTL) * time.Second
}

func (c *CoreConfig) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":33033"
	}
	if c.Security.TokenExpireHours <= 0 {
		c.Security.TokenExpireHours = 24
	}
	if c.Security.BcryptCost <= 0 {
		c.Security.BcryptCost = 12
	}
	if c.Channel.APIKeyCacheTTL <= 0 {
		c.Channel.APIKeyCacheTTL = 300
	}
	if c.ObjectStorage.Driver == "" {
		c.ObjectStorage.Driver = "none"
	}
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("QUKA_IOT_SERVICE_ADDRESS")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.Redis.FromENV()
	c.Security.FromENV()
	c.Channel.FromENV()
}

func (s *Security) FromENV() {
	s.JWTPrivateKey = os.Getenv("QUKA_IOT_JWT_PRIVATE_KEY")
	s.JWTPublicKey = os.Getenv("QUKA_IOT_JWT_PUBLIC_KEY")
	if v, err := strconv.Atoi(os.Getenv("QUKA_IOT_TOKEN_EXPIRE_HOURS")); err == nil {
		s.TokenExpireHours = v
	}
}

func (c *ChannelConfig) FromENV() {
	if v, err := strconv.ParseBool(os.Getenv("QUKA_IOT_PURGE_HISTORY_ON_FIELD_REMOVAL")); err == nil {
		c.PurgeHistoryOnFieldRemoval = v
	}
	if v, err := strconv.Atoi(os.Getenv("QUKA_IOT_INGEST_RATE_LIMIT")); err == nil {
		c.IngestRateLimit = v
	}
}

type PGConfig struct {
	DSN             string `toml:"dsn"`
	MaxOpen         int    `toml:"max_open_conns"`
	MaxIdle         int    `toml:"max_idle_conns"`
	MaxLifetimeSecs int    `toml:"conn_max_lifetime"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("QUKA_IOT_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

func (c PGConfig) MaxOpenConns() int {
	return c.MaxOpen
}

func (c PGConfig) MaxIdleConns() int {
	return c.MaxIdle
}

func (c PGConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.MaxLifetimeSecs) * time.Second
}

type RedisConfig struct {
	// 单机模式配置
	Addr     string `toml:"addr"`     // Redis地址，格式: host:port，为空则不启用缓存
	Password string `toml:"password"` // Redis密码
	DB       int    `toml:"db"`       // Redis数据库索引 (0-15)

	// 集群模式配置
	Cluster       bool     `toml:"cluster"`
	ClusterAddrs  []string `toml:"cluster_addrs"`
	ClusterPasswd string   `toml:"cluster_passwd"`

	// 连接池配置
	PoolSize     int `toml:"pool_size"` // 默认10
	MinIdleConns int `toml:"min_idle_conns"`
	MaxRetries   int `toml:"max_retries"`   // 默认3
	DialTimeout  int `toml:"dial_timeout"`  // 秒，默认5
	ReadTimeout  int `toml:"read_timeout"`  // 秒，默认3
	WriteTimeout int `toml:"write_timeout"` // 秒，默认3

	KeyPrefix string `toml:"key_prefix"` // Redis键前缀，用于隔离不同环境/应用
}

func (r *RedisConfig) Enabled() bool {
	return r.Addr != "" || (r.Cluster && len(r.ClusterAddrs) > 0)
}

func (r *RedisConfig) FromENV() {
	r.Addr = os.Getenv("QUKA_IOT_REDIS_ADDR")
	r.Password = os.Getenv("QUKA_IOT_REDIS_PASSWORD")
	if dbStr := os.Getenv("QUKA_IOT_REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			r.DB = db
		}
	}
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("QUKA_IOT_LOG_LEVEL")
	l.Path = os.Getenv("QUKA_IOT_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
