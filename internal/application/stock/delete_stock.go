package stock

import (
	"context"

	"github.com/xiebiao/stock-service/internal/domain/stock"
)

// DeleteStockUseCase 库存删除用例
type DeleteStockUseCase struct {
	repo stock.Repository
}

// NewDeleteStockUseCase 创建删除用例
func NewDeleteStockUseCase(repo stock.Repository) *DeleteStockUseCase {
	return &DeleteStockUseCase{repo: repo}
}

// Execute 删除单条库存记录
// 记录不存在返回ErrStockNotFound
func (uc *DeleteStockUseCase) Execute(ctx context.Context, platform, sku string) error {
	return uc.repo.Delete(ctx, platform, sku)
}

// ExecuteAll 删除平台下全部库存记录，返回删除条数
// 设计说明:
// 1. 先枚举再逐条删除，不是原子操作；
//    删除过程中新建的记录可能幸存，属可接受语义（管理端清场操作）
// 2. 平台下没有记录时返回0，不报错
func (uc *DeleteStockUseCase) ExecuteAll(ctx context.Context, platform string) (int, error) {
	entities, err := uc.repo.GetAll(ctx, platform)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, entity := range entities {
		if err := uc.repo.Delete(ctx, platform, entity.Sku); err != nil {
			// 枚举后被并发删除：跳过即可
			if stock.IsNotFound(err) {
				continue
			}
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}
