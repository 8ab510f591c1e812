package stock

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/stock-service/internal/domain/stock"
)

// SetStockUseCase 库存覆盖重置用例
// 设计说明:
// 1. 特权操作：无条件覆盖全部字段，包括发放计数
// 2. 用于管理端纠偏（对账后修正计数、重开活动等），
//    不做不可变字段检查，但载荷自身必须一致（仓储层校验）
type SetStockUseCase struct {
	repo   stock.Repository
	events EventPublisher
}

// NewSetStockUseCase 创建覆盖重置用例
func NewSetStockUseCase(repo stock.Repository, events EventPublisher) *SetStockUseCase {
	return &SetStockUseCase{repo: repo, events: events}
}

// SetStockRequest 覆盖重置请求DTO
type SetStockRequest struct {
	Platform string
	Sku      string

	Maximum    int
	Allocation string

	MaximumForClaim    *int
	MaximumForPurchase *int

	Issued            int
	IssuedForClaim    int
	IssuedForPurchase int

	Expires *time.Time
}

// Execute 执行覆盖重置
func (uc *SetStockUseCase) Execute(ctx context.Context, req SetStockRequest) (*stock.AvailableStock, error) {
	allocation, err := stock.ParseAllocation(req.Allocation)
	if err != nil {
		return nil, err
	}

	entity, err := uc.repo.Set(ctx, &stock.StockRecord{
		Platform:           req.Platform,
		Sku:                req.Sku,
		Maximum:            req.Maximum,
		MaximumForClaim:    req.MaximumForClaim,
		MaximumForPurchase: req.MaximumForPurchase,
		Issued:             req.Issued,
		IssuedForClaim:     req.IssuedForClaim,
		IssuedForPurchase:  req.IssuedForPurchase,
		Expires:            req.Expires,
		Allocation:         allocation,
	})
	if err != nil {
		return nil, err
	}

	if uc.events != nil {
		if err := uc.events.Publish(ctx, RoutingKeyStockReset, newStockChangedEvent(entity)); err != nil {
			log.Printf("[WARN] 发布库存重置事件失败: %v", err)
		}
	}

	return entity, nil
}
