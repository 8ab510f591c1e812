package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/stock-service/internal/domain/stock"
	apperrors "github.com/xiebiao/stock-service/pkg/errors"
)

// issueLogRepository 发放流水仓储实现（MySQL）
// 设计说明:
// 1. 实现domain/stock定义的LogRepository接口
// 2. 流水只增不改，没有Update/Delete方法
// 3. IssueLog本身带GORM tag，不需要单独的持久化模型做转换
type issueLogRepository struct {
	db *gorm.DB
}

// NewIssueLogRepository 创建发放流水仓储
func NewIssueLogRepository(db *gorm.DB) stock.LogRepository {
	return &issueLogRepository{db: db}
}

// Create 追加一条发放流水
func (r *issueLogRepository) Create(ctx context.Context, entry *stock.IssueLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperrors.Wrap(err, "写入发放流水失败")
	}
	return nil
}

// ListBySku 分页查询某SKU的发放流水（按时间倒序）
func (r *issueLogRepository) ListBySku(ctx context.Context, platform, sku string, page, pageSize int) ([]*stock.IssueLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&stock.IssueLog{}).
		Where("platform = ? AND sku = ?", platform, sku)

	// 1. 查询总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计发放流水失败")
	}

	// 2. 分页查询
	var entries []*stock.IssueLog
	offset := (page - 1) * pageSize
	err := query.Order("id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询发放流水失败")
	}

	return entries, total, nil
}
