package stock

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/stock-service/internal/domain/stock"
	"github.com/xiebiao/stock-service/pkg/metrics"
	"github.com/xiebiao/stock-service/pkg/tracing"
)

// CreateIssueUseCase 库存发放用例
// 设计说明:
// 1. 发放的原子性完全由仓储（Redis脚本）保证，
//    本用例只做编排：渠道解析 → 发放 → 流水/事件/指标
// 2. 流水与事件都是尽力而为：写失败只记日志，
//    绝不回滚已成功的发放（Redis计数是唯一权威数据源）
type CreateIssueUseCase struct {
	repo   stock.Repository
	logs   stock.LogRepository
	events EventPublisher
}

// NewCreateIssueUseCase 创建发放用例
func NewCreateIssueUseCase(repo stock.Repository, logs stock.LogRepository, events EventPublisher) *CreateIssueUseCase {
	return &CreateIssueUseCase{
		repo:   repo,
		logs:   logs,
		events: events,
	}
}

// Execute 通过指定渠道发放一个库存单位
// 失败：
//   - ErrInvalidChannel: 渠道参数非法
//   - ErrStockNotFound: 记录不存在
//   - ErrOutOfStock: 总池或渠道池耗尽、记录已过期
func (uc *CreateIssueUseCase) Execute(ctx context.Context, platform, sku, channel string) (*stock.IssuedStock, error) {
	ctx, span := tracing.StartSpan(ctx, "application/stock", "CreateIssue")
	defer span.End()
	span.SetAttributes(
		attribute.String("stock.platform", platform),
		attribute.String("stock.sku", sku),
		attribute.String("stock.channel", channel),
	)

	ch, err := stock.ParseChannel(channel)
	if err != nil {
		return nil, err
	}

	issued, err := uc.repo.Issue(ctx, platform, sku, ch)
	if err != nil {
		uc.observeRejection(platform, err)
		return nil, err
	}

	if metrics.IssuesTotal != nil {
		metrics.IssuesTotal.WithLabelValues(platform, string(ch)).Inc()
	}

	// 审计流水（尽力而为）
	if uc.logs != nil {
		entry := &stock.IssueLog{
			Platform:    platform,
			Sku:         sku,
			Channel:     ch,
			Issued:      issued.Issued,
			IssueNumber: issued.Issue,
		}
		if err := uc.logs.Create(ctx, entry); err != nil {
			log.Printf("[WARN] 写入发放流水失败: platform=%s sku=%s issue=%d err=%v",
				platform, sku, issued.Issue, err)
		}
	}

	// 事件通知（尽力而为）
	if uc.events != nil {
		event := StockIssuedEvent{
			Platform:    platform,
			Sku:         sku,
			Channel:     string(ch),
			Issued:      issued.Issued,
			IssueNumber: issued.Issue,
			OccurredAt:  time.Now(),
		}
		if err := uc.events.Publish(ctx, RoutingKeyStockIssued, event); err != nil {
			log.Printf("[WARN] 发布发放事件失败: platform=%s sku=%s err=%v", platform, sku, err)
		}
	}

	return issued, nil
}

// observeRejection 按失败原因统计被拒发放
func (uc *CreateIssueUseCase) observeRejection(platform string, err error) {
	if metrics.IssuesRejectedTotal == nil {
		return
	}
	switch {
	case stock.IsOutOfStock(err):
		metrics.IssuesRejectedTotal.WithLabelValues(platform, "out_of_stock").Inc()
	case stock.IsNotFound(err):
		metrics.IssuesRejectedTotal.WithLabelValues(platform, "not_found").Inc()
	default:
		metrics.IssuesRejectedTotal.WithLabelValues(platform, "error").Inc()
	}
}
