package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/apperr"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
)

const (
	stockCachePrefix = "mfg:stock:"
	stockCacheTTL    = 5 * time.Minute
)

// voucherAllowsNegative 允许把库存打负的凭证类型（欠单消耗）
var voucherAllowsNegative = map[string]bool{
	entity.VoucherBackorderConsumption: true,
}

// LedgerService 库存台账引擎。库存只经台账变动，台账只追加。
// 物料的当前库存 = 台账分录累计和；Item.CurrentStock 只是物化值。
// 可选 redis 作为读缓存，每次写入后对该物料失效
type LedgerService struct {
	ledgerRepo  *repository.LedgerRepository
	itemRepo    *repository.ItemRepository
	companyRepo *repository.CompanyRepository
	db          *gorm.DB
	cache       *redis.Client // 可为nil，表示不启用缓存
	// allowNegativeDefault 全局默认负库存策略，租户配置优先
	allowNegativeDefault bool
}

func NewLedgerService(ledgerRepo *repository.LedgerRepository, itemRepo *repository.ItemRepository, companyRepo *repository.CompanyRepository, db *gorm.DB, cache *redis.Client, allowNegativeDefault bool) *LedgerService {
	return &LedgerService{
		ledgerRepo:           ledgerRepo,
		itemRepo:             itemRepo,
		companyRepo:          companyRepo,
		db:                   db,
		cache:                cache,
		allowNegativeDefault: allowNegativeDefault,
	}
}

type RecordMovementRequest struct {
	ItemID      string          `json:"item_id" binding:"required"`
	QtyDelta    decimal.Decimal `json:"qty_delta" binding:"required"`
	VoucherType string          `json:"voucher_type" binding:"required"`
	Notes       string          `json:"notes"`
}

// RecordMovement 记录一笔库存变动。
// 读余额、校验、写分录在同一事务内完成，物料行持锁串行化并发扣减
func (s *LedgerService) RecordMovement(ctx context.Context, req RecordMovementRequest, companyID, userID string) (*entity.StockLedgerEntry, error) {
	if req.QtyDelta.IsZero() {
		return nil, apperr.InvalidQuantity("变动数量不能为0")
	}

	allowNegative, err := s.tenantAllowsNegative(companyID)
	if err != nil {
		return nil, err
	}

	var entry *entity.StockLedgerEntry
	err = s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, req.ItemID, companyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("物料 %s 不存在", req.ItemID)
			}
			return fmt.Errorf("锁定物料失败: %w", err)
		}

		entry, err = s.ApplyTx(tx, item, ApplyMovement{
			QtyDelta:    req.QtyDelta,
			VoucherType: req.VoucherType,
			Notes:       req.Notes,
			CreatedBy:   userID,
		}, allowNegative)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateStock(ctx, companyID, req.ItemID)
	return entry, nil
}

// ApplyMovement 台账写入参数
type ApplyMovement struct {
	QtyDelta      decimal.Decimal
	VoucherType   string
	ReferenceType string
	ReferenceID   string
	Notes         string
	CreatedBy     string
}

// ApplyTx 在调用方事务内追加台账分录并刷新物化库存。
// item 必须已被 FOR UPDATE 锁定；余额从台账重算，不信任物化列
func (s *LedgerService) ApplyTx(tx *gorm.DB, item *entity.Item, m ApplyMovement, allowNegative bool) (*entity.StockLedgerEntry, error) {
	balance, err := s.ledgerRepo.SumByItem(tx, item.ID, item.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("计算物料 %s 余额失败: %w", item.Code, err)
	}

	next := balance.Add(m.QtyDelta)
	if m.QtyDelta.IsNegative() && next.IsNegative() {
		if !allowNegative && !voucherAllowsNegative[m.VoucherType] {
			return nil, apperr.InsufficientStock("物料 %s 库存不足: 需要%s, 可用%s",
				item.Code, m.QtyDelta.Neg().String(), balance.String())
		}
	}

	entry := &entity.StockLedgerEntry{
		ID:            uuid.New().String(),
		CompanyID:     item.CompanyID,
		ItemID:        item.ID,
		QtyDelta:      m.QtyDelta,
		VoucherType:   m.VoucherType,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
	}
	if err := s.ledgerRepo.Append(tx, entry); err != nil {
		return nil, fmt.Errorf("写入台账分录失败: %w", err)
	}
	if err := s.itemRepo.UpdateStock(tx, item.ID, next); err != nil {
		return nil, fmt.Errorf("刷新物化库存失败: %w", err)
	}
	return entry, nil
}

// CurrentStock 当前库存。缓存命中直接返回，未命中从台账累计
func (s *LedgerService) CurrentStock(ctx context.Context, itemID, companyID string) (decimal.Decimal, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, stockCacheKey(companyID, itemID)).Result(); err == nil {
			if qty, derr := decimal.NewFromString(cached); derr == nil {
				return qty, nil
			}
		}
	}

	if _, err := s.itemRepo.GetByID(itemID, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, apperr.NotFound("物料 %s 不存在", itemID)
		}
		return decimal.Zero, fmt.Errorf("读取物料失败: %w", err)
	}

	qty, err := s.ledgerRepo.SumByItem(s.db, itemID, companyID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("计算余额失败: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, stockCacheKey(companyID, itemID), qty.String(), stockCacheTTL)
	}
	return qty, nil
}

// InvalidateStock 写入后失效该物料的库存缓存
func (s *LedgerService) InvalidateStock(ctx context.Context, companyID, itemID string) {
	if s.cache == nil {
		return
	}
	s.cache.Del(ctx, stockCacheKey(companyID, itemID))
}

// TenantAllowsNegative 租户负库存策略（租户开关优先于全局默认）
func (s *LedgerService) TenantAllowsNegative(companyID string) (bool, error) {
	return s.tenantAllowsNegative(companyID)
}

func (s *LedgerService) tenantAllowsNegative(companyID string) (bool, error) {
	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.NotFound("租户 %s 不存在", companyID)
		}
		return false, fmt.Errorf("读取租户失败: %w", err)
	}
	return company.AllowNegativeStock || s.allowNegativeDefault, nil
}

func (s *LedgerService) ListEntries(params repository.LedgerListParams) ([]entity.StockLedgerEntry, int64, error) {
	return s.ledgerRepo.List(params)
}

func stockCacheKey(companyID, itemID string) string {
	return stockCachePrefix + companyID + ":" + itemID
}
