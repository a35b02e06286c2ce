package selfhost

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/time/rate"

	"github.com/quka-ai/quka-iot/app/core"
	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
	"github.com/quka-ai/quka-iot/pkg/plugins"
	"github.com/quka-ai/quka-iot/pkg/safe"
	"github.com/quka-ai/quka-iot/pkg/types"
	"github.com/quka-ai/quka-iot/pkg/utils"
)

const (
	DefaultAdminEmail = "admin@quka.local"
	defaultLimit      = 60

	// 限流器数量上限，超出后新 key 共用同一个溢出桶
	defaultMaxLimiters = 10000
	limiterSweepEvery  = time.Second
)

func NewSingleLock() *SingleLock {
	return &SingleLock{
		locks: make(map[string]bool),
	}
}

// SingleLock 单机锁，ctx 结束时自动释放
type SingleLock struct {
	mu    sync.Mutex
	locks map[string]bool
}

func (s *SingleLock) TryLock(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[key] {
		return false, nil
	}
	s.locks[key] = true
	go safe.Run(func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.locks, key)
	})
	return true, nil
}

func init() {
	plugins.RegisterProvider("selfhost", newSelfHostMode())
}

var _ core.Plugins = (*SelfHostPlugin)(nil)

type Config struct {
	AdminEmail  string `toml:"admin_email"`
	MaxLimiters int    `toml:"max_limiters"`
}

func newSelfHostMode() *SelfHostPlugin {
	return &SelfHostPlugin{
		singleLock: NewSingleLock(),
		limiters:   cmap.New[*rate.Limiter](),
		overflow:   cmap.New[*rate.Limiter](),
	}
}

type SelfHostPlugin struct {
	core       *core.Core
	cfg        Config
	singleLock *SingleLock
	limiters   cmap.ConcurrentMap[string, *rate.Limiter]
	overflow   cmap.ConcurrentMap[string, *rate.Limiter]
	lastSweep  atomic.Int64
	storage    core.FileStorage
	cache      types.Cache
}

func (s *SelfHostPlugin) Name() string {
	return "selfhost"
}

func (s *SelfHostPlugin) Install(c *core.Core) error {
	fmt.Println("Start initialize.")
	utils.SetupIDWorker(1)

	s.core = c
	s.cache = c.NewCache()

	customConfig := core.NewCustomConfigPayload[Config]()
	if err := c.Cfg().LoadCustomConfig(&customConfig); err != nil {
		return fmt.Errorf("Failed to load selfhost custom config: %w", err)
	}
	s.cfg = customConfig.CustomConfig
	if s.cfg.AdminEmail == "" {
		s.cfg.AdminEmail = DefaultAdminEmail
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	total, err := v1.CountUsers(ctx, c)
	if err != nil {
		return fmt.Errorf("Initialize sql error: %w", err)
	}
	if total > 0 {
		fmt.Println("System is already initialized. Skip.")
		return nil
	}

	password, err := v1.NewUserLogic(ctx, c).InitAdminUser(s.cfg.AdminEmail)
	if err != nil {
		return err
	}

	fmt.Println("Admin email:", s.cfg.AdminEmail)
	fmt.Println("Admin password:", password)
	return nil
}

func (s *SelfHostPlugin) Cache() types.Cache {
	if s.cache == nil {
		return core.EmptyCache{}
	}
	return s.cache
}

func (s *SelfHostPlugin) TryLock(ctx context.Context, key string) (bool, error) {
	return s.singleLock.TryLock(ctx, key)
}

// UseLimiter Limit 代表每个 Every 周期(默认一分钟)允许的数量
func (s *SelfHostPlugin) UseLimiter(c *gin.Context, key string, method string, opts ...core.LimitOption) core.Limiter {
	cfg := &core.LimitConfig{
		Limit: defaultLimit,
		Every: time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.Every <= 0 {
		cfg.Every = time.Minute
	}

	newLimiter := func(exist bool, valueInMap, _ *rate.Limiter) *rate.Limiter {
		if exist {
			return valueInMap
		}
		slog.Debug("new limiter", slog.String("method", method), slog.Int("limit", cfg.Limit))
		return rate.NewLimiter(rate.Every(cfg.Every/time.Duration(cfg.Limit)), cfg.Limit)
	}

	mapKey := method + ":" + key
	if l, ok := s.limiters.Get(mapKey); ok {
		return l
	}
	if s.limiters.Count() >= s.maxLimiters() && !s.sweepIdleLimiters() {
		// key 来自未校验的请求头，满额后不再为新 key 分配限流器
		return s.overflow.Upsert(method, nil, newLimiter)
	}
	return s.limiters.Upsert(mapKey, nil, newLimiter)
}

func (s *SelfHostPlugin) maxLimiters() int {
	if s.cfg.MaxLimiters > 0 {
		return s.cfg.MaxLimiters
	}
	return defaultMaxLimiters
}

// sweepIdleLimiters 删除令牌已回满的限流器，重建后状态等价
// 返回清理后是否有空位，每 limiterSweepEvery 最多执行一次
func (s *SelfHostPlugin) sweepIdleLimiters() bool {
	now := time.Now().UnixNano()
	last := s.lastSweep.Load()
	if now-last < int64(limiterSweepEvery) || !s.lastSweep.CompareAndSwap(last, now) {
		return false
	}

	for item := range s.limiters.IterBuffered() {
		s.limiters.RemoveCb(item.Key, func(_ string, l *rate.Limiter, exists bool) bool {
			return exists && l.Tokens() >= float64(l.Burst())
		})
	}
	return s.limiters.Count() < s.maxLimiters()
}

func (s *SelfHostPlugin) FileStorage() core.FileStorage {
	if s.storage != nil {
		return s.storage
	}

	s.storage = plugins.SetupObjectStorage(s.core.Cfg().ObjectStorage)

	return s.storage
}
