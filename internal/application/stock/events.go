package stock

import (
	"context"
	"time"

	"github.com/xiebiao/stock-service/internal/domain/stock"
)

// EventPublisher 库存事件发布接口
// 设计说明:
// 1. 由应用层定义接口，pkg/mq的RabbitMQ Publisher实现
// 2. MQ未启用时注入nil，用例侧跳过发布（事件是通知性质，非事务参与方）
type EventPublisher interface {
	// Publish 发布一条事件消息（JSON序列化）
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// 事件路由键
const (
	RoutingKeyStockIssued = "stock.issued"
	RoutingKeyStockSaved  = "stock.saved"
	RoutingKeyStockReset  = "stock.reset"
)

// StockIssuedEvent 发放成功事件
type StockIssuedEvent struct {
	Platform    string    `json:"platform"`
	Sku         string    `json:"sku"`
	Channel     string    `json:"channel"`
	Issued      int       `json:"issued"`       // 发放后的原始计数
	IssueNumber int       `json:"issue_number"` // 对外发放序号
	OccurredAt  time.Time `json:"occurred_at"`
}

// StockChangedEvent 库存记录变更事件（save/set共用）
type StockChangedEvent struct {
	Platform   string    `json:"platform"`
	Sku        string    `json:"sku"`
	Maximum    int       `json:"maximum"`
	Issued     int       `json:"issued"`
	Allocation string    `json:"allocation"`
	OccurredAt time.Time `json:"occurred_at"`
}

// newStockChangedEvent 从库存实体构建变更事件
func newStockChangedEvent(entity *stock.AvailableStock) StockChangedEvent {
	return StockChangedEvent{
		Platform:   entity.Platform,
		Sku:        entity.Sku,
		Maximum:    entity.Maximum,
		Issued:     entity.Issued,
		Allocation: string(entity.Allocation),
		OccurredAt: time.Now(),
	}
}
