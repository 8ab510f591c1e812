package stock

import (
	"context"

	"github.com/xiebiao/stock-service/internal/domain/stock"
)

// ListStockUseCase 平台库存清单用例
type ListStockUseCase struct {
	repo stock.Repository
}

// NewListStockUseCase 创建清单用例
func NewListStockUseCase(repo stock.Repository) *ListStockUseCase {
	return &ListStockUseCase{repo: repo}
}

// Execute 枚举平台下所有库存记录
// 平台下没有任何记录时返回空切片，不报错
func (uc *ListStockUseCase) Execute(ctx context.Context, platform string) ([]*stock.AvailableStock, error) {
	return uc.repo.GetAll(ctx, platform)
}
