package service

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
)

// Services 制造执行服务集合
type Services struct {
	Resolver *BOMResolver
	Planner  *Planner
	BOM      *BOMService
	Ledger   *LedgerService
	Order    *OrderService
}

type Options struct {
	// Cache 可为nil，表示关闭库存读缓存
	Cache *redis.Client
	// AllowNegativeStock 全局默认负库存策略
	AllowNegativeStock bool
	Logger             *zap.Logger
}

func NewServices(repos *repository.Repositories, db *gorm.DB, opts Options) *Services {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	resolver := NewBOMResolver(repos.BOM, repos.Item, repos.WorkCenter, db)
	planner := NewPlanner(resolver, repos.Item, db)
	ledger := NewLedgerService(repos.Ledger, repos.Item, repos.Company, db, opts.Cache, opts.AllowNegativeStock)

	return &Services{
		Resolver: resolver,
		Planner:  planner,
		BOM:      NewBOMService(repos.BOM, repos.Item, repos.WorkCenter, resolver, db),
		Ledger:   ledger,
		Order:    NewOrderService(repos.Order, repos.Item, resolver, planner, ledger, db, opts.Logger),
	}
}
