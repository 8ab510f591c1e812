package dto

import (
	"time"

	"github.com/xiebiao/stock-service/internal/domain/stock"
)

// SaveStockRequest HTTP库存upsert请求
// validator tag说明:
// - maximum必须为正（创建后不可变）
// - allocation只允许SEQUENTIAL/RANDOM（创建后不可变）
// - 渠道上限与expires可选：字段缺失表示"不设置"，与0严格区分
type SaveStockRequest struct {
	Maximum    int    `json:"maximum" binding:"required,min=1" example:"100"`
	Allocation string `json:"allocation" binding:"required,oneof=SEQUENTIAL RANDOM" example:"SEQUENTIAL"`

	MaximumForClaim    *int `json:"maximum_for_claim" binding:"omitempty,min=0" example:"20"`
	MaximumForPurchase *int `json:"maximum_for_purchase" binding:"omitempty,min=0" example:"80"`

	// 过期时间（unix毫秒），缺失表示永不过期
	Expires *int64 `json:"expires" binding:"omitempty,min=0" example:"1756617600000"`
}

// SetStockRequest HTTP库存覆盖重置请求
// 特权操作：比save多出三个发放计数字段，直接覆盖
type SetStockRequest struct {
	Maximum    int    `json:"maximum" binding:"required,min=1" example:"100"`
	Allocation string `json:"allocation" binding:"required,oneof=SEQUENTIAL RANDOM" example:"SEQUENTIAL"`

	MaximumForClaim    *int `json:"maximum_for_claim" binding:"omitempty,min=0" example:"20"`
	MaximumForPurchase *int `json:"maximum_for_purchase" binding:"omitempty,min=0" example:"80"`

	Issued            int `json:"issued" binding:"min=0" example:"0"`
	IssuedForClaim    int `json:"issued_for_claim" binding:"min=0" example:"0"`
	IssuedForPurchase int `json:"issued_for_purchase" binding:"min=0" example:"0"`

	Expires *int64 `json:"expires" binding:"omitempty,min=0" example:"1756617600000"`
}

// StockResponse HTTP库存记录响应（内部视图：全字段）
type StockResponse struct {
	Platform string `json:"platform" example:"shop-cn"`
	Sku      string `json:"sku" example:"SKU-2025-001"`

	Maximum            int  `json:"maximum" example:"100"`
	MaximumForClaim    *int `json:"maximum_for_claim" example:"20"`
	MaximumForPurchase *int `json:"maximum_for_purchase" example:"80"`

	Issued            int `json:"issued" example:"5"`
	IssuedForClaim    int `json:"issued_for_claim" example:"2"`
	IssuedForPurchase int `json:"issued_for_purchase" example:"3"`

	Expires    *int64 `json:"expires" example:"1756617600000"` // unix毫秒，null=永不过期
	Allocation string `json:"allocation" example:"SEQUENTIAL"`

	AvailableForClaim    int `json:"available_for_claim" example:"18"`
	AvailableForPurchase int `json:"available_for_purchase" example:"77"`
}

// RetailerStockResponse HTTP库存记录响应（零售端视图：缩减投影）
// 零售端只关心还能不能买，不暴露渠道拆分和发放计数
// Deprecated字段stock与available同值，等零售端客户端迁移后删除
type RetailerStockResponse struct {
	Platform  string `json:"platform" example:"shop-cn"`
	Sku       string `json:"sku" example:"SKU-2025-001"`
	Stock     int    `json:"stock" example:"77"` // Deprecated: 使用available
	Available int    `json:"available" example:"77"`
}

// IssueResponse HTTP发放成功响应
// issue是对外发放序号（RANDOM模式下经洗牌，与issued计数不同）
type IssueResponse struct {
	StockResponse

	Issue int `json:"issue" example:"6"`
}

// IssueLogItem HTTP发放流水项
type IssueLogItem struct {
	ID          uint   `json:"id" example:"1"`
	Platform    string `json:"platform" example:"shop-cn"`
	Sku         string `json:"sku" example:"SKU-2025-001"`
	Channel     string `json:"channel" example:"purchase"`
	Issued      int    `json:"issued" example:"6"`
	IssueNumber int    `json:"issue_number" example:"42"`
	CreatedAt   string `json:"created_at" example:"2025-08-31 10:30:00"`
}

// ListIssueLogsResponse HTTP发放流水列表响应
type ListIssueLogsResponse struct {
	List       []IssueLogItem `json:"list"`
	Total      int64          `json:"total" example:"100"`
	Page       int            `json:"page" example:"1"`
	PageSize   int            `json:"page_size" example:"20"`
	TotalPages int            `json:"total_pages" example:"5"`
}

// ToStockResponse 领域实体 → 内部视图DTO
func ToStockResponse(entity *stock.AvailableStock) *StockResponse {
	return &StockResponse{
		Platform:             entity.Platform,
		Sku:                  entity.Sku,
		Maximum:              entity.Maximum,
		MaximumForClaim:      entity.MaximumForClaim,
		MaximumForPurchase:   entity.MaximumForPurchase,
		Issued:               entity.Issued,
		IssuedForClaim:       entity.IssuedForClaim,
		IssuedForPurchase:    entity.IssuedForPurchase,
		Expires:              TimeToMillis(entity.Expires),
		Allocation:           string(entity.Allocation),
		AvailableForClaim:    entity.AvailableForClaim,
		AvailableForPurchase: entity.AvailableForPurchase,
	}
}

// ToRetailerStockResponse 领域实体 → 零售端视图DTO
// available取purchase渠道可用量（零售端只走购买渠道）
func ToRetailerStockResponse(entity *stock.AvailableStock) *RetailerStockResponse {
	return &RetailerStockResponse{
		Platform:  entity.Platform,
		Sku:       entity.Sku,
		Stock:     entity.AvailableForPurchase,
		Available: entity.AvailableForPurchase,
	}
}

// ToIssueResponse 发放结果 → HTTP响应DTO
func ToIssueResponse(issued *stock.IssuedStock) *IssueResponse {
	return &IssueResponse{
		StockResponse: *ToStockResponse(&issued.AvailableStock),
		Issue:         issued.Issue,
	}
}

// ToIssueLogItem 发放流水实体 → HTTP列表项
func ToIssueLogItem(entry *stock.IssueLog) IssueLogItem {
	return IssueLogItem{
		ID:          entry.ID,
		Platform:    entry.Platform,
		Sku:         entry.Sku,
		Channel:     string(entry.Channel),
		Issued:      entry.Issued,
		IssueNumber: entry.IssueNumber,
		CreatedAt:   entry.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// TimeToMillis 可选时间 → unix毫秒
func TimeToMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// MillisToTime unix毫秒 → 可选时间
func MillisToTime(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms)
	return &t
}
