package stock

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/stock-service/internal/domain/stock"
)

// SaveStockUseCase 库存upsert用例
// 设计说明:
// 1. 记录不存在时创建（发放计数从0开始）
// 2. 记录已存在时只允许改渠道上限与过期时间，
//    maximum/allocation不可变（改发放规模请走set重置）
type SaveStockUseCase struct {
	repo   stock.Repository
	events EventPublisher
}

// NewSaveStockUseCase 创建upsert用例
func NewSaveStockUseCase(repo stock.Repository, events EventPublisher) *SaveStockUseCase {
	return &SaveStockUseCase{repo: repo, events: events}
}

// SaveStockRequest upsert请求DTO
type SaveStockRequest struct {
	Platform string
	Sku      string

	Maximum    int
	Allocation string

	MaximumForClaim    *int
	MaximumForPurchase *int
	Expires            *time.Time
}

// Execute 执行upsert
func (uc *SaveStockUseCase) Execute(ctx context.Context, req SaveStockRequest) (*stock.AvailableStock, error) {
	allocation, err := stock.ParseAllocation(req.Allocation)
	if err != nil {
		return nil, err
	}

	entity, err := uc.repo.Save(ctx, &stock.SaveStock{
		Platform:           req.Platform,
		Sku:                req.Sku,
		Maximum:            req.Maximum,
		Allocation:         allocation,
		MaximumForClaim:    req.MaximumForClaim,
		MaximumForPurchase: req.MaximumForPurchase,
		Expires:            req.Expires,
	})
	if err != nil {
		return nil, err
	}

	// 事件发布是尽力而为：失败只记日志，不影响已落库的变更
	if uc.events != nil {
		if err := uc.events.Publish(ctx, RoutingKeyStockSaved, newStockChangedEvent(entity)); err != nil {
			log.Printf("[WARN] 发布库存变更事件失败: %v", err)
		}
	}

	return entity, nil
}
