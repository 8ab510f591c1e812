package stock

import (
	"context"

	"github.com/xiebiao/stock-service/internal/domain/stock"
)

// GetStockUseCase 库存查询用例
// 设计说明:
// 1. 读取单条库存记录及两个渠道的派生可用量
// 2. 可用量是读取时刻的快照，高并发下返回后可能立即失效，
//    需要强保证的调用方应直接走发放接口（发放侧才做原子检查）
type GetStockUseCase struct {
	repo stock.Repository
}

// NewGetStockUseCase 创建库存查询用例
func NewGetStockUseCase(repo stock.Repository) *GetStockUseCase {
	return &GetStockUseCase{repo: repo}
}

// Execute 执行查询
// 记录不存在返回ErrStockNotFound
func (uc *GetStockUseCase) Execute(ctx context.Context, platform, sku string) (*stock.AvailableStock, error) {
	entity, err := uc.repo.Get(ctx, platform, sku)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, stock.ErrStockNotFound.WithMessagef(
			"库存记录不存在. platform: %s, sku: %s", platform, sku)
	}
	return entity, nil
}
